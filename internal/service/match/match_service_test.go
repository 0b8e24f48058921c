package match

import (
	"sync"
	"testing"
	"time"

	"match_chat_server/internal/dao/mysql"
	"match_chat_server/internal/model"
	"match_chat_server/pkg/constants"
	"match_chat_server/pkg/errorx"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeUserRepo 内存版用户 Repository
type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*model.UserInfo
}

var _ mysql.UserRepository = (*fakeUserRepo)(nil)

func newFakeUserRepo(users ...*model.UserInfo) *fakeUserRepo {
	repo := &fakeUserRepo{users: make(map[string]*model.UserInfo)}
	for _, u := range users {
		repo.users[u.Uuid] = u
	}
	return repo
}

func (f *fakeUserRepo) FindByUuid(uuid string) (*model.UserInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.users[uuid]; ok {
		copied := *u
		return &copied, nil
	}
	return nil, errorx.New(errorx.CodeNotFound, "user not found")
}

func (f *fakeUserRepo) FindByEmail(email string) (*model.UserInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, errorx.New(errorx.CodeNotFound, "user not found")
}

func (f *fakeUserRepo) FindByUsername(username string) (*model.UserInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Username == username {
			copied := *u
			return &copied, nil
		}
	}
	return nil, errorx.New(errorx.CodeNotFound, "user not found")
}

func (f *fakeUserRepo) FindAllExcept(excludeUuid string) ([]model.UserInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.UserInfo
	for _, u := range f.users {
		if u.Uuid != excludeUuid {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (f *fakeUserRepo) Create(user *model.UserInfo) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *user
	f.users[user.Uuid] = &copied
	return nil
}

func (f *fakeUserRepo) UpdateFields(uuid string, fields map[string]any) error {
	return nil
}

func (f *fakeUserRepo) UpdateStatus(uuid string, status string, lastActive time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.users[uuid]; ok {
		u.Status = status
		u.LastActive.Time = lastActive
		u.LastActive.Valid = true
	}
	return nil
}

// fakeRoomRepo 内存版房间 Repository
type fakeRoomRepo struct {
	mu    sync.Mutex
	rooms []*model.ChatRoom
}

var _ mysql.ChatRoomRepository = (*fakeRoomRepo)(nil)

func (f *fakeRoomRepo) FindByUuid(uuid string) (*model.ChatRoom, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, room := range f.rooms {
		if room.Uuid == uuid {
			copied := *room
			return &copied, nil
		}
	}
	return nil, errorx.New(errorx.CodeNotFound, "room not found")
}

func (f *fakeRoomRepo) FindByMembers(memberOne, memberTwo string) (*model.ChatRoom, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, room := range f.rooms {
		if room.MemberOne == memberOne && room.MemberTwo == memberTwo {
			copied := *room
			return &copied, nil
		}
	}
	return nil, errorx.New(errorx.CodeNotFound, "room not found")
}

func (f *fakeRoomRepo) Create(room *model.ChatRoom) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *room
	f.rooms = append(f.rooms, &copied)
	return nil
}

func (f *fakeRoomRepo) UpdateLastMessage(roomUuid, content, senderId string, at time.Time) error {
	return nil
}

func TestFindRandomMatchEmptyPool(t *testing.T) {
	svc := NewService(newFakeUserRepo(&model.UserInfo{Uuid: "U1"}), &fakeRoomRepo{})

	matched, err := svc.FindRandomMatch("U1")
	require.NoError(t, err)
	assert.Nil(t, matched)
}

func TestFindRandomMatchExcludesSelf(t *testing.T) {
	svc := NewService(newFakeUserRepo(
		&model.UserInfo{Uuid: "U1"},
		&model.UserInfo{Uuid: "U2"},
	), &fakeRoomRepo{})

	for i := 0; i < 20; i++ {
		matched, err := svc.FindRandomMatch("U1")
		require.NoError(t, err)
		require.NotNil(t, matched)
		assert.Equal(t, "U2", matched.Uuid)
	}
}

func TestFindRandomMatchIncludesOfflineUsers(t *testing.T) {
	// 候选池不按在线状态过滤，离线用户也可被匹配到
	svc := NewService(newFakeUserRepo(
		&model.UserInfo{Uuid: "U1", Status: constants.StatusOnline},
		&model.UserInfo{Uuid: "U2", Status: constants.StatusOffline},
	), &fakeRoomRepo{})

	matched, err := svc.FindRandomMatch("U1")
	require.NoError(t, err)
	require.NotNil(t, matched)
	assert.Equal(t, "U2", matched.Uuid)
}

func TestEnsureUserCreatesMissingRecord(t *testing.T) {
	userRepo := newFakeUserRepo()
	svc := NewService(userRepo, &fakeRoomRepo{})

	require.NoError(t, svc.EnsureUser(&model.UserInfo{Uuid: "U1", Name: "Alice"}))

	created, err := userRepo.FindByUuid("U1")
	require.NoError(t, err)
	assert.Equal(t, "Alice", created.Name)
	assert.Equal(t, constants.StatusOnline, created.Status)
}

func TestEnsureUserKeepsExistingRecord(t *testing.T) {
	userRepo := newFakeUserRepo(&model.UserInfo{Uuid: "U1", Name: "Original"})
	svc := NewService(userRepo, &fakeRoomRepo{})

	require.NoError(t, svc.EnsureUser(&model.UserInfo{Uuid: "U1", Name: "Changed"}))

	existing, err := userRepo.FindByUuid("U1")
	require.NoError(t, err)
	assert.Equal(t, "Original", existing.Name)
}

func TestSelectUserRejectsSelf(t *testing.T) {
	svc := NewService(newFakeUserRepo(&model.UserInfo{Uuid: "U1"}), &fakeRoomRepo{})

	_, err := svc.SelectUser("U1", "U1")
	require.Error(t, err)
	assert.Equal(t, errorx.CodeInvalidParam, errorx.GetCode(err))
}

func TestCreateChatRoomCanonicalMembers(t *testing.T) {
	roomRepo := &fakeRoomRepo{}
	svc := NewService(newFakeUserRepo(), roomRepo)

	room, err := svc.CreateChatRoom("U9", "U2")
	require.NoError(t, err)
	assert.Equal(t, "U2", room.MemberOne)
	assert.Equal(t, "U9", room.MemberTwo)
	assert.NotEmpty(t, room.Uuid)
}

func TestCreateChatRoomReusesExisting(t *testing.T) {
	roomRepo := &fakeRoomRepo{}
	svc := NewService(newFakeUserRepo(), roomRepo)

	first, err := svc.CreateChatRoom("U1", "U2")
	require.NoError(t, err)

	// 参数顺序相反也命中同一房间
	second, err := svc.CreateChatRoom("U2", "U1")
	require.NoError(t, err)
	assert.Equal(t, first.Uuid, second.Uuid)

	roomRepo.mu.Lock()
	assert.Len(t, roomRepo.rooms, 1)
	roomRepo.mu.Unlock()
}

func TestCreateChatRoomRejectsSamePair(t *testing.T) {
	svc := NewService(newFakeUserRepo(), &fakeRoomRepo{})

	_, err := svc.CreateChatRoom("U1", "U1")
	require.Error(t, err)
	assert.Equal(t, errorx.CodeInvalidParam, errorx.GetCode(err))
}
