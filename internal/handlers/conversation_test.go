package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/omarionnn/mom-app/internal/mocks"
	"github.com/omarionnn/mom-app/internal/models"
	"github.com/omarionnn/mom-app/internal/repositories"
	"github.com/omarionnn/mom-app/internal/ws"
)

func setupConversationRouter(handler *ConversationHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	RegisterValidators()
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("userID", 1)
		c.Next()
	})
	r.GET("/conversations", handler.ListConversations)
	r.GET("/conversations/unread", handler.GetUnreadCount)
	r.GET("/conversations/:user_id/messages", handler.GetThreadMessages)
	r.POST("/conversations/:user_id/read", handler.MarkThreadRead)
	r.POST("/messages", handler.SendMessage)
	return r
}

// fakeMessageStore backs every MessageRepository read with the same slice
// so per-thread counts and the badge total cannot drift apart.
type fakeMessageStore struct {
	messages []models.Message
}

func (s *fakeMessageStore) Create(ctx context.Context, senderID, recipientID int, content string) (models.Message, error) {
	msg := models.Message{ID: len(s.messages) + 1, SenderID: senderID, RecipientID: recipientID, Content: content, CreatedAt: time.Now()}
	s.messages = append(s.messages, msg)
	return msg, nil
}

func (s *fakeMessageStore) LatestBetween(ctx context.Context, userA, userB int) (*models.Message, error) {
	var latest *models.Message
	for i := range s.messages {
		m := s.messages[i]
		if (m.SenderID == userA && m.RecipientID == userB) || (m.SenderID == userB && m.RecipientID == userA) {
			latest = &s.messages[i]
		}
	}
	return latest, nil
}

func (s *fakeMessageStore) ListBetween(ctx context.Context, userA, userB int) ([]models.Message, error) {
	var out []models.Message
	for _, m := range s.messages {
		if (m.SenderID == userA && m.RecipientID == userB) || (m.SenderID == userB && m.RecipientID == userA) {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *fakeMessageStore) UnreadCount(ctx context.Context, fromID, toID int) (int, error) {
	count := 0
	for _, m := range s.messages {
		if m.SenderID == fromID && m.RecipientID == toID && m.ReadAt == nil {
			count++
		}
	}
	return count, nil
}

func (s *fakeMessageStore) TotalUnread(ctx context.Context, userID int) (int, error) {
	count := 0
	for _, m := range s.messages {
		if m.RecipientID == userID && m.ReadAt == nil {
			count++
		}
	}
	return count, nil
}

func (s *fakeMessageStore) MarkThreadRead(ctx context.Context, fromID, toID int) (int64, error) {
	now := time.Now()
	var updated int64
	for i := range s.messages {
		m := &s.messages[i]
		if m.SenderID == fromID && m.RecipientID == toID && m.ReadAt == nil {
			m.ReadAt = &now
			updated++
		}
	}
	return updated, nil
}

func TestUnreadBadgeEqualsConversationSum(t *testing.T) {
	matchRepo := new(mocks.MatchRepositoryMock)
	profileRepo := new(mocks.ProfileRepositoryMock)
	store := &fakeMessageStore{}
	handler := NewConversationHandler(matchRepo, store, profileRepo, nil, ws.NewHub(), nil)
	router := setupConversationRouter(handler)

	ctx := context.Background()
	_, _ = store.Create(ctx, 2, 1, "one")
	_, _ = store.Create(ctx, 2, 1, "two")
	_, _ = store.Create(ctx, 3, 1, "three")
	_, _ = store.Create(ctx, 1, 2, "reply")

	matchRepo.On("ListForUser", mock.Anything, 1).Return([]models.Match{
		{ID: 10, User1ID: 1, User2ID: 2},
		{ID: 11, User1ID: 1, User2ID: 3},
	}, nil)
	matchRepo.On("GetByUsers", mock.Anything, 1, 2).
		Return(models.Match{ID: 10, User1ID: 1, User2ID: 2}, nil)
	profileRepo.On("DisplayNames", mock.Anything, []int{2, 3}).
		Return(map[int]string{2: "ana", 3: "bea"}, nil)

	badgeAndSum := func() (int, int) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/conversations/unread", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		var badge struct {
			UnreadCount int `json:"unread_count"`
		}
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&badge))

		rec = httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/conversations", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		var list struct {
			Conversations []models.ConversationSummary `json:"conversations"`
		}
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&list))
		sum := 0
		for _, conv := range list.Conversations {
			sum += conv.UnreadCount
		}
		return badge.UnreadCount, sum
	}

	badge, sum := badgeAndSum()
	assert.Equal(t, 3, badge)
	assert.Equal(t, badge, sum)

	// Reading one thread must shrink the badge and the sum together.
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/conversations/2/read", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	badge, sum = badgeAndSum()
	assert.Equal(t, 1, badge)
	assert.Equal(t, badge, sum)
}

func TestListConversationsOrdering(t *testing.T) {
	matchRepo := new(mocks.MatchRepositoryMock)
	messageRepo := new(mocks.MessageRepositoryMock)
	profileRepo := new(mocks.ProfileRepositoryMock)
	handler := NewConversationHandler(matchRepo, messageRepo, profileRepo, nil, ws.NewHub(), nil)
	router := setupConversationRouter(handler)

	now := time.Now()
	matchRepo.On("ListForUser", mock.Anything, 1).Return([]models.Match{
		{ID: 10, User1ID: 1, User2ID: 2},
		{ID: 11, User1ID: 1, User2ID: 3},
		{ID: 12, User1ID: 1, User2ID: 4},
	}, nil).Once()

	// match 10 has an older message, match 11 a newer one, match 12 none.
	messageRepo.On("LatestBetween", mock.Anything, 1, 2).
		Return(&models.Message{ID: 1, SenderID: 2, RecipientID: 1, CreatedAt: now.Add(-time.Hour)}, nil).Once()
	messageRepo.On("LatestBetween", mock.Anything, 1, 3).
		Return(&models.Message{ID: 2, SenderID: 3, RecipientID: 1, CreatedAt: now}, nil).Once()
	messageRepo.On("LatestBetween", mock.Anything, 1, 4).Return((*models.Message)(nil), nil).Once()
	messageRepo.On("UnreadCount", mock.Anything, 2, 1).Return(1, nil).Once()
	messageRepo.On("UnreadCount", mock.Anything, 3, 1).Return(2, nil).Once()
	messageRepo.On("UnreadCount", mock.Anything, 4, 1).Return(0, nil).Once()
	profileRepo.On("DisplayNames", mock.Anything, []int{2, 3, 4}).
		Return(map[int]string{2: "ana", 3: "bea", 4: "cara"}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/conversations", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Conversations []models.ConversationSummary `json:"conversations"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp.Conversations, 3)
	assert.Equal(t, 11, resp.Conversations[0].MatchID)
	assert.Equal(t, 10, resp.Conversations[1].MatchID)
	assert.Equal(t, 12, resp.Conversations[2].MatchID)
	assert.Equal(t, "bea", resp.Conversations[0].OtherDisplayName)
	matchRepo.AssertExpectations(t)
	messageRepo.AssertExpectations(t)
}

func TestGetUnreadCountCacheHit(t *testing.T) {
	messageRepo := new(mocks.MessageRepositoryMock)
	unreadCache := new(mocks.UnreadCacheMock)
	handler := NewConversationHandler(new(mocks.MatchRepositoryMock), messageRepo, new(mocks.ProfileRepositoryMock), unreadCache, ws.NewHub(), nil)
	router := setupConversationRouter(handler)

	unreadCache.On("Get", mock.Anything, 1).Return(7, true, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/conversations/unread", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]int
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, 7, resp["unread_count"])
	messageRepo.AssertNotCalled(t, "TotalUnread", mock.Anything, mock.Anything)
}

func TestGetUnreadCountCacheMiss(t *testing.T) {
	messageRepo := new(mocks.MessageRepositoryMock)
	unreadCache := new(mocks.UnreadCacheMock)
	handler := NewConversationHandler(new(mocks.MatchRepositoryMock), messageRepo, new(mocks.ProfileRepositoryMock), unreadCache, ws.NewHub(), nil)
	router := setupConversationRouter(handler)

	unreadCache.On("Get", mock.Anything, 1).Return(0, false, nil).Once()
	messageRepo.On("TotalUnread", mock.Anything, 1).Return(3, nil).Once()
	unreadCache.On("Set", mock.Anything, 1, 3).Return(nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/conversations/unread", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	unreadCache.AssertExpectations(t)
	messageRepo.AssertExpectations(t)
}

func TestSendMessageSuccess(t *testing.T) {
	matchRepo := new(mocks.MatchRepositoryMock)
	messageRepo := new(mocks.MessageRepositoryMock)
	unreadCache := new(mocks.UnreadCacheMock)
	handler := NewConversationHandler(matchRepo, messageRepo, new(mocks.ProfileRepositoryMock), unreadCache, ws.NewHub(), nil)
	router := setupConversationRouter(handler)

	matchRepo.On("GetByUsers", mock.Anything, 1, 2).Return(models.Match{ID: 5, User1ID: 1, User2ID: 2}, nil).Once()
	messageRepo.On("Create", mock.Anything, 1, 2, "hi").
		Return(models.Message{ID: 20, SenderID: 1, RecipientID: 2, Content: "hi"}, nil).Once()
	unreadCache.On("Invalidate", mock.Anything, 2).Return(nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/messages", bytes.NewBufferString(`{"recipient_id":2,"content":"hi"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	var msg models.Message
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&msg))
	assert.Equal(t, 20, msg.ID)
	matchRepo.AssertExpectations(t)
	messageRepo.AssertExpectations(t)
	unreadCache.AssertExpectations(t)
}

func TestSendMessageUnmatched(t *testing.T) {
	matchRepo := new(mocks.MatchRepositoryMock)
	messageRepo := new(mocks.MessageRepositoryMock)
	handler := NewConversationHandler(matchRepo, messageRepo, new(mocks.ProfileRepositoryMock), nil, ws.NewHub(), nil)
	router := setupConversationRouter(handler)

	matchRepo.On("GetByUsers", mock.Anything, 1, 2).Return(models.Match{}, repositories.ErrMatchNotFound).Once()

	req := httptest.NewRequest(http.MethodPost, "/messages", bytes.NewBufferString(`{"recipient_id":2,"content":"hi"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
	messageRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSendMessageContentBounds(t *testing.T) {
	matchRepo := new(mocks.MatchRepositoryMock)
	messageRepo := new(mocks.MessageRepositoryMock)
	handler := NewConversationHandler(matchRepo, messageRepo, new(mocks.ProfileRepositoryMock), nil, ws.NewHub(), nil)
	router := setupConversationRouter(handler)

	for name, content := range map[string]string{
		"empty":    "",
		"too long": strings.Repeat("a", 2001),
	} {
		body, err := json.Marshal(gin.H{"recipient_id": 2, "content": content})
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodPost, "/messages", bytes.NewBuffer(body))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		require.Equal(t, http.StatusBadRequest, rec.Code, name)
	}

	// Boundary lengths pass validation and reach the store.
	for name, content := range map[string]string{
		"single char": "a",
		"max length":  strings.Repeat("a", 2000),
	} {
		matchRepo.On("GetByUsers", mock.Anything, 1, 2).
			Return(models.Match{ID: 5, User1ID: 1, User2ID: 2}, nil).Once()
		messageRepo.On("Create", mock.Anything, 1, 2, content).
			Return(models.Message{ID: 21, SenderID: 1, RecipientID: 2, Content: content}, nil).Once()

		body, err := json.Marshal(gin.H{"recipient_id": 2, "content": content})
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodPost, "/messages", bytes.NewBuffer(body))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		require.Equal(t, http.StatusCreated, rec.Code, name)
	}
	matchRepo.AssertExpectations(t)
	messageRepo.AssertExpectations(t)
}

func TestSendMessageSelf(t *testing.T) {
	matchRepo := new(mocks.MatchRepositoryMock)
	handler := NewConversationHandler(matchRepo, new(mocks.MessageRepositoryMock), new(mocks.ProfileRepositoryMock), nil, ws.NewHub(), nil)
	router := setupConversationRouter(handler)

	req := httptest.NewRequest(http.MethodPost, "/messages", bytes.NewBufferString(`{"recipient_id":1,"content":"hi"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	matchRepo.AssertNotCalled(t, "GetByUsers", mock.Anything, mock.Anything, mock.Anything)
}

func TestGetThreadMessagesRequiresMatch(t *testing.T) {
	matchRepo := new(mocks.MatchRepositoryMock)
	messageRepo := new(mocks.MessageRepositoryMock)
	handler := NewConversationHandler(matchRepo, messageRepo, new(mocks.ProfileRepositoryMock), nil, ws.NewHub(), nil)
	router := setupConversationRouter(handler)

	matchRepo.On("GetByUsers", mock.Anything, 1, 2).Return(models.Match{}, repositories.ErrMatchNotFound).Once()

	req := httptest.NewRequest(http.MethodGet, "/conversations/2/messages", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
	messageRepo.AssertNotCalled(t, "ListBetween", mock.Anything, mock.Anything, mock.Anything)
}

func TestMarkThreadReadUpdatesAndInvalidates(t *testing.T) {
	matchRepo := new(mocks.MatchRepositoryMock)
	messageRepo := new(mocks.MessageRepositoryMock)
	unreadCache := new(mocks.UnreadCacheMock)
	handler := NewConversationHandler(matchRepo, messageRepo, new(mocks.ProfileRepositoryMock), unreadCache, ws.NewHub(), nil)
	router := setupConversationRouter(handler)

	messageRepo.On("MarkThreadRead", mock.Anything, 2, 1).Return(int64(3), nil).Once()
	unreadCache.On("Invalidate", mock.Anything, 1).Return(nil).Once()
	matchRepo.On("GetByUsers", mock.Anything, 1, 2).Return(models.Match{ID: 5}, nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/conversations/2/read", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]int64
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, int64(3), resp["marked_read"])
	unreadCache.AssertExpectations(t)
}

func TestMarkThreadReadNoopWhenNothingUnread(t *testing.T) {
	messageRepo := new(mocks.MessageRepositoryMock)
	unreadCache := new(mocks.UnreadCacheMock)
	handler := NewConversationHandler(new(mocks.MatchRepositoryMock), messageRepo, new(mocks.ProfileRepositoryMock), unreadCache, ws.NewHub(), nil)
	router := setupConversationRouter(handler)

	messageRepo.On("MarkThreadRead", mock.Anything, 2, 1).Return(int64(0), nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/conversations/2/read", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	unreadCache.AssertNotCalled(t, "Invalidate", mock.Anything, mock.Anything)
}
