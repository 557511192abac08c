package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/omarionnn/mom-app/internal/models"
)

type ProfileRepositoryMock struct {
	mock.Mock
}

func (m *ProfileRepositoryMock) GetByUserID(ctx context.Context, userID int) (models.Profile, error) {
	args := m.Called(ctx, userID)
	var profile models.Profile
	if val := args.Get(0); val != nil {
		profile = val.(models.Profile)
	}
	return profile, args.Error(1)
}

func (m *ProfileRepositoryMock) Upsert(ctx context.Context, profile *models.Profile) error {
	args := m.Called(ctx, profile)
	return args.Error(0)
}

func (m *ProfileRepositoryMock) FindCandidates(ctx context.Context, userID int, city *string, limit int) ([]models.Profile, error) {
	args := m.Called(ctx, userID, city, limit)
	var list []models.Profile
	if val := args.Get(0); val != nil {
		list = val.([]models.Profile)
	}
	return list, args.Error(1)
}

func (m *ProfileRepositoryMock) DisplayNames(ctx context.Context, userIDs []int) (map[int]string, error) {
	args := m.Called(ctx, userIDs)
	var names map[int]string
	if val := args.Get(0); val != nil {
		names = val.(map[int]string)
	}
	return names, args.Error(1)
}

type SwipeRepositoryMock struct {
	mock.Mock
}

func (m *SwipeRepositoryMock) Create(ctx context.Context, swipe *models.Swipe) (bool, error) {
	args := m.Called(ctx, swipe)
	return args.Bool(0), args.Error(1)
}

func (m *SwipeRepositoryMock) HasRightSwipe(ctx context.Context, swiperID, swipedID int) (bool, error) {
	args := m.Called(ctx, swiperID, swipedID)
	return args.Bool(0), args.Error(1)
}

type MatchRepositoryMock struct {
	mock.Mock
}

func (m *MatchRepositoryMock) CreateOrGet(ctx context.Context, userA, userB int) (models.Match, bool, error) {
	args := m.Called(ctx, userA, userB)
	var match models.Match
	if val := args.Get(0); val != nil {
		match = val.(models.Match)
	}
	return match, args.Bool(1), args.Error(2)
}

func (m *MatchRepositoryMock) GetByID(ctx context.Context, matchID int) (models.Match, error) {
	args := m.Called(ctx, matchID)
	var match models.Match
	if val := args.Get(0); val != nil {
		match = val.(models.Match)
	}
	return match, args.Error(1)
}

func (m *MatchRepositoryMock) GetByUsers(ctx context.Context, userA, userB int) (models.Match, error) {
	args := m.Called(ctx, userA, userB)
	var match models.Match
	if val := args.Get(0); val != nil {
		match = val.(models.Match)
	}
	return match, args.Error(1)
}

func (m *MatchRepositoryMock) ListForUser(ctx context.Context, userID int) ([]models.Match, error) {
	args := m.Called(ctx, userID)
	var list []models.Match
	if val := args.Get(0); val != nil {
		list = val.([]models.Match)
	}
	return list, args.Error(1)
}

func (m *MatchRepositoryMock) DeleteWithMessages(ctx context.Context, userA, userB int) error {
	args := m.Called(ctx, userA, userB)
	return args.Error(0)
}

type MessageRepositoryMock struct {
	mock.Mock
}

func (m *MessageRepositoryMock) Create(ctx context.Context, senderID, recipientID int, content string) (models.Message, error) {
	args := m.Called(ctx, senderID, recipientID, content)
	var msg models.Message
	if val := args.Get(0); val != nil {
		msg = val.(models.Message)
	}
	return msg, args.Error(1)
}

func (m *MessageRepositoryMock) LatestBetween(ctx context.Context, userA, userB int) (*models.Message, error) {
	args := m.Called(ctx, userA, userB)
	var msg *models.Message
	if val := args.Get(0); val != nil {
		msg = val.(*models.Message)
	}
	return msg, args.Error(1)
}

func (m *MessageRepositoryMock) ListBetween(ctx context.Context, userA, userB int) ([]models.Message, error) {
	args := m.Called(ctx, userA, userB)
	var list []models.Message
	if val := args.Get(0); val != nil {
		list = val.([]models.Message)
	}
	return list, args.Error(1)
}

func (m *MessageRepositoryMock) UnreadCount(ctx context.Context, fromID, toID int) (int, error) {
	args := m.Called(ctx, fromID, toID)
	return args.Int(0), args.Error(1)
}

func (m *MessageRepositoryMock) TotalUnread(ctx context.Context, userID int) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

func (m *MessageRepositoryMock) MarkThreadRead(ctx context.Context, fromID, toID int) (int64, error) {
	args := m.Called(ctx, fromID, toID)
	return args.Get(0).(int64), args.Error(1)
}

type GroupRepositoryMock struct {
	mock.Mock
}

func (m *GroupRepositoryMock) GetGroup(ctx context.Context, groupID int) (models.Group, error) {
	args := m.Called(ctx, groupID)
	var group models.Group
	if val := args.Get(0); val != nil {
		group = val.(models.Group)
	}
	return group, args.Error(1)
}

func (m *GroupRepositoryMock) ListWithMembership(ctx context.Context, userID int, city *string) ([]models.GroupWithMembership, error) {
	args := m.Called(ctx, userID, city)
	var list []models.GroupWithMembership
	if val := args.Get(0); val != nil {
		list = val.([]models.GroupWithMembership)
	}
	return list, args.Error(1)
}

func (m *GroupRepositoryMock) Join(ctx context.Context, groupID, userID int) (bool, error) {
	args := m.Called(ctx, groupID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *GroupRepositoryMock) Leave(ctx context.Context, groupID, userID int) error {
	args := m.Called(ctx, groupID, userID)
	return args.Error(0)
}

func (m *GroupRepositoryMock) IsMember(ctx context.Context, groupID, userID int) (bool, error) {
	args := m.Called(ctx, groupID, userID)
	return args.Bool(0), args.Error(1)
}

type GroupMessageRepositoryMock struct {
	mock.Mock
}

func (m *GroupMessageRepositoryMock) Create(ctx context.Context, groupID, senderID int, content string) (models.GroupMessage, error) {
	args := m.Called(ctx, groupID, senderID, content)
	var msg models.GroupMessage
	if val := args.Get(0); val != nil {
		msg = val.(models.GroupMessage)
	}
	return msg, args.Error(1)
}

func (m *GroupMessageRepositoryMock) ListForGroup(ctx context.Context, groupID int) ([]models.GroupMessage, error) {
	args := m.Called(ctx, groupID)
	var list []models.GroupMessage
	if val := args.Get(0); val != nil {
		list = val.([]models.GroupMessage)
	}
	return list, args.Error(1)
}

func (m *GroupMessageRepositoryMock) Get(ctx context.Context, messageID int) (models.GroupMessage, error) {
	args := m.Called(ctx, messageID)
	var msg models.GroupMessage
	if val := args.Get(0); val != nil {
		msg = val.(models.GroupMessage)
	}
	return msg, args.Error(1)
}

func (m *GroupMessageRepositoryMock) SoftDelete(ctx context.Context, messageID, deleterID int) error {
	args := m.Called(ctx, messageID, deleterID)
	return args.Error(0)
}

type UnreadCacheMock struct {
	mock.Mock
}

func (m *UnreadCacheMock) Get(ctx context.Context, userID int) (int, bool, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Bool(1), args.Error(2)
}

func (m *UnreadCacheMock) Set(ctx context.Context, userID, count int) error {
	args := m.Called(ctx, userID, count)
	return args.Error(0)
}

func (m *UnreadCacheMock) Invalidate(ctx context.Context, userID int) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}
