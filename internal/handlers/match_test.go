package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/omarionnn/mom-app/internal/mocks"
	"github.com/omarionnn/mom-app/internal/models"
	"github.com/omarionnn/mom-app/internal/repositories"
	"github.com/omarionnn/mom-app/internal/ws"
)

func setupMatchRouter(handler *MatchHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	RegisterValidators()
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("userID", 1)
		c.Next()
	})
	r.GET("/candidates", handler.GetCandidates)
	r.POST("/swipes", handler.RecordSwipe)
	r.DELETE("/matches/:user_id", handler.Unmatch)
	return r
}

func strPtr(s string) *string { return &s }

func TestGetCandidatesSuccess(t *testing.T) {
	profileRepo := new(mocks.ProfileRepositoryMock)
	handler := NewMatchHandler(profileRepo, nil, nil, nil, ws.NewHub(), nil)
	router := setupMatchRouter(handler)

	me := models.Profile{UserID: 1, City: strPtr("Austin"), Interests: []string{"hiking", "coffee"}}
	profileRepo.On("GetByUserID", mock.Anything, 1).Return(me, nil).Once()
	profileRepo.On("FindCandidates", mock.Anything, 1, me.City, DefaultCandidateLimit).
		Return([]models.Profile{{UserID: 2, Interests: []string{"coffee", "yoga"}}}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/candidates", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Candidates []models.CandidateProfile `json:"candidates"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp.Candidates, 1)
	assert.Equal(t, []string{"coffee"}, resp.Candidates[0].SharedInterests)
	profileRepo.AssertExpectations(t)
}

func TestGetCandidatesWidensWhenCityEmpty(t *testing.T) {
	profileRepo := new(mocks.ProfileRepositoryMock)
	handler := NewMatchHandler(profileRepo, nil, nil, nil, ws.NewHub(), nil)
	router := setupMatchRouter(handler)

	me := models.Profile{UserID: 1, City: strPtr("Fargo")}
	profileRepo.On("GetByUserID", mock.Anything, 1).Return(me, nil).Once()
	profileRepo.On("FindCandidates", mock.Anything, 1, me.City, DefaultCandidateLimit).
		Return([]models.Profile{}, nil).Once()
	profileRepo.On("FindCandidates", mock.Anything, 1, (*string)(nil), DefaultCandidateLimit).
		Return([]models.Profile{{UserID: 3}}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/candidates", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	profileRepo.AssertExpectations(t)
}

func TestGetCandidatesInvalidLimit(t *testing.T) {
	handler := NewMatchHandler(new(mocks.ProfileRepositoryMock), nil, nil, nil, ws.NewHub(), nil)
	router := setupMatchRouter(handler)

	for _, limit := range []string{"0", "-5", "abc"} {
		req := httptest.NewRequest(http.MethodGet, "/candidates?limit="+limit, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		require.Equal(t, http.StatusBadRequest, rec.Code, "limit=%s", limit)
	}
}

func TestGetCandidatesNoProfile(t *testing.T) {
	profileRepo := new(mocks.ProfileRepositoryMock)
	handler := NewMatchHandler(profileRepo, nil, nil, nil, ws.NewHub(), nil)
	router := setupMatchRouter(handler)

	profileRepo.On("GetByUserID", mock.Anything, 1).
		Return(models.Profile{}, repositories.ErrProfileNotFound).Once()

	req := httptest.NewRequest(http.MethodGet, "/candidates", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	profileRepo.AssertExpectations(t)
}

func TestRecordSwipeLeftNoMatchCheck(t *testing.T) {
	swipeRepo := new(mocks.SwipeRepositoryMock)
	handler := NewMatchHandler(new(mocks.ProfileRepositoryMock), swipeRepo, new(mocks.MatchRepositoryMock), nil, ws.NewHub(), nil)
	router := setupMatchRouter(handler)

	swipeRepo.On("Create", mock.Anything, mock.MatchedBy(func(s *models.Swipe) bool {
		return s.SwiperID == 1 && s.SwipedID == 2 && s.Direction == models.DirectionLeft
	})).Return(true, nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/swipes", bytes.NewBufferString(`{"target_user_id":2,"direction":"left"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	swipeRepo.AssertExpectations(t)
	swipeRepo.AssertNotCalled(t, "HasRightSwipe", mock.Anything, mock.Anything, mock.Anything)
}

func TestRecordSwipeRightNoReciprocal(t *testing.T) {
	swipeRepo := new(mocks.SwipeRepositoryMock)
	matchRepo := new(mocks.MatchRepositoryMock)
	handler := NewMatchHandler(new(mocks.ProfileRepositoryMock), swipeRepo, matchRepo, nil, ws.NewHub(), nil)
	router := setupMatchRouter(handler)

	swipeRepo.On("Create", mock.Anything, mock.Anything).Return(true, nil).Once()
	swipeRepo.On("HasRightSwipe", mock.Anything, 2, 1).Return(false, nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/swipes", bytes.NewBufferString(`{"target_user_id":2,"direction":"right"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Nil(t, resp["match"])
	matchRepo.AssertNotCalled(t, "CreateOrGet", mock.Anything, mock.Anything, mock.Anything)
}

func TestRecordSwipeMutualCreatesMatch(t *testing.T) {
	swipeRepo := new(mocks.SwipeRepositoryMock)
	matchRepo := new(mocks.MatchRepositoryMock)
	handler := NewMatchHandler(new(mocks.ProfileRepositoryMock), swipeRepo, matchRepo, nil, ws.NewHub(), nil)
	router := setupMatchRouter(handler)

	swipeRepo.On("Create", mock.Anything, mock.Anything).Return(true, nil).Once()
	swipeRepo.On("HasRightSwipe", mock.Anything, 2, 1).Return(true, nil).Once()
	matchRepo.On("CreateOrGet", mock.Anything, 1, 2).
		Return(models.Match{ID: 9, User1ID: 1, User2ID: 2}, true, nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/swipes", bytes.NewBufferString(`{"target_user_id":2,"direction":"right"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Match *models.Match `json:"match"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.NotNil(t, resp.Match)
	assert.Equal(t, 9, resp.Match.ID)
	swipeRepo.AssertExpectations(t)
	matchRepo.AssertExpectations(t)
}

func TestRecordSwipeDuplicateShortCircuits(t *testing.T) {
	swipeRepo := new(mocks.SwipeRepositoryMock)
	matchRepo := new(mocks.MatchRepositoryMock)
	handler := NewMatchHandler(new(mocks.ProfileRepositoryMock), swipeRepo, matchRepo, nil, ws.NewHub(), nil)
	router := setupMatchRouter(handler)

	swipeRepo.On("Create", mock.Anything, mock.Anything).Return(false, nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/swipes", bytes.NewBufferString(`{"target_user_id":2,"direction":"right"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, true, resp["duplicate"])
	swipeRepo.AssertNotCalled(t, "HasRightSwipe", mock.Anything, mock.Anything, mock.Anything)
	matchRepo.AssertNotCalled(t, "CreateOrGet", mock.Anything, mock.Anything, mock.Anything)
}

func TestRecordSwipeSelf(t *testing.T) {
	swipeRepo := new(mocks.SwipeRepositoryMock)
	handler := NewMatchHandler(new(mocks.ProfileRepositoryMock), swipeRepo, nil, nil, ws.NewHub(), nil)
	router := setupMatchRouter(handler)

	req := httptest.NewRequest(http.MethodPost, "/swipes", bytes.NewBufferString(`{"target_user_id":1,"direction":"right"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	swipeRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestRecordSwipeInvalidDirection(t *testing.T) {
	handler := NewMatchHandler(new(mocks.ProfileRepositoryMock), new(mocks.SwipeRepositoryMock), nil, nil, ws.NewHub(), nil)
	router := setupMatchRouter(handler)

	req := httptest.NewRequest(http.MethodPost, "/swipes", bytes.NewBufferString(`{"target_user_id":2,"direction":"up"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUnmatchSuccess(t *testing.T) {
	matchRepo := new(mocks.MatchRepositoryMock)
	handler := NewMatchHandler(new(mocks.ProfileRepositoryMock), nil, matchRepo, nil, ws.NewHub(), nil)
	router := setupMatchRouter(handler)

	matchRepo.On("GetByUsers", mock.Anything, 1, 2).Return(models.Match{ID: 4, User1ID: 1, User2ID: 2}, nil).Once()
	matchRepo.On("DeleteWithMessages", mock.Anything, 1, 2).Return(nil).Once()

	req := httptest.NewRequest(http.MethodDelete, "/matches/2", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	matchRepo.AssertExpectations(t)
}

func TestUnmatchInvalidatesBothUnreadCaches(t *testing.T) {
	matchRepo := new(mocks.MatchRepositoryMock)
	unreadCache := new(mocks.UnreadCacheMock)
	handler := NewMatchHandler(new(mocks.ProfileRepositoryMock), nil, matchRepo, unreadCache, ws.NewHub(), nil)
	router := setupMatchRouter(handler)

	matchRepo.On("GetByUsers", mock.Anything, 1, 2).Return(models.Match{ID: 4, User1ID: 1, User2ID: 2}, nil).Once()
	matchRepo.On("DeleteWithMessages", mock.Anything, 1, 2).Return(nil).Once()
	unreadCache.On("Invalidate", mock.Anything, 1).Return(nil).Once()
	unreadCache.On("Invalidate", mock.Anything, 2).Return(nil).Once()

	req := httptest.NewRequest(http.MethodDelete, "/matches/2", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	unreadCache.AssertExpectations(t)
}

func TestUnmatchNotFound(t *testing.T) {
	matchRepo := new(mocks.MatchRepositoryMock)
	handler := NewMatchHandler(new(mocks.ProfileRepositoryMock), nil, matchRepo, nil, ws.NewHub(), nil)
	router := setupMatchRouter(handler)

	matchRepo.On("GetByUsers", mock.Anything, 1, 9).Return(models.Match{}, repositories.ErrMatchNotFound).Once()

	req := httptest.NewRequest(http.MethodDelete, "/matches/9", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	matchRepo.AssertNotCalled(t, "DeleteWithMessages", mock.Anything, mock.Anything, mock.Anything)
}
