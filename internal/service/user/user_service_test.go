package user

import (
	"strings"
	"sync"
	"testing"
	"time"

	"match_chat_server/internal/dao/mysql"
	"match_chat_server/internal/model"
	"match_chat_server/pkg/errorx"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

type fakeUserRepo struct {
	mu     sync.Mutex
	users  map[string]*model.UserInfo
	fields map[string]any // 最近一次 UpdateFields 的入参
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

func (f *fakeUserRepo) FindByEmail(string) (*model.UserInfo, error) {
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
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fields = fields
	return nil
}

func (f *fakeUserRepo) UpdateStatus(string, string, time.Time) error { return nil }

func TestIsUsernameAvailableRules(t *testing.T) {
	svc := NewService(newFakeUserRepo(
		&model.UserInfo{Uuid: "U1", Username: "alice_99"},
		&model.UserInfo{Uuid: "U2", Username: "bob"},
	))

	cases := []struct {
		name     string
		username string
		selfId   string
		want     bool
	}{
		{"too short", "ab", "U1", false},
		{"too long", strings.Repeat("a", 31), "U1", false},
		{"invalid chars", "has space", "U1", false},
		{"invalid symbol", "nick-name", "U1", false},
		{"taken by other", "bob", "U1", false},
		{"own username", "alice_99", "U1", true},
		{"free", "charlie_1", "U1", true},
		{"min length", "abc", "U1", true},
		{"max length", strings.Repeat("a", 30), "U1", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := svc.IsUsernameAvailable(tc.username, tc.selfId)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestUpdateProfileRejectsTakenUsername(t *testing.T) {
	svc := NewService(newFakeUserRepo(
		&model.UserInfo{Uuid: "U1"},
		&model.UserInfo{Uuid: "U2", Username: "bob"},
	))

	err := svc.UpdateProfile("U1", map[string]any{"username": "bob"})
	require.Error(t, err)
	assert.Equal(t, errorx.CodeUsernameTaken, errorx.GetCode(err))
}

func TestUpdateProfileRejectsTooManyInterests(t *testing.T) {
	svc := NewService(newFakeUserRepo(&model.UserInfo{Uuid: "U1"}))

	interests := make([]string, 11)
	for i := range interests {
		interests[i] = "hobby"
	}
	err := svc.UpdateProfile("U1", map[string]any{"interests": interests})
	require.Error(t, err)
	assert.Equal(t, errorx.CodeInvalidParam, errorx.GetCode(err))
}

func TestUpdateProfileConvertsInterestsToJSONColumn(t *testing.T) {
	repo := newFakeUserRepo(&model.UserInfo{Uuid: "U1"})
	svc := NewService(repo)

	require.NoError(t, svc.UpdateProfile("U1", map[string]any{
		"interests": []string{"music", "hiking"},
	}))

	repo.mu.Lock()
	defer repo.mu.Unlock()
	// 裸 []string 会在驱动层被拒绝，必须以 JSON 列类型入库
	stored, ok := repo.fields["interests"].(datatypes.JSONSlice[string])
	require.True(t, ok, "interests stored as %T", repo.fields["interests"])
	assert.Equal(t, datatypes.JSONSlice[string]{"music", "hiking"}, stored)
}

func TestUpdateProfilePassesFieldsThrough(t *testing.T) {
	repo := newFakeUserRepo(&model.UserInfo{Uuid: "U1"})
	svc := NewService(repo)

	require.NoError(t, svc.UpdateProfile("U1", map[string]any{"bio": "hello", "age": 25}))

	repo.mu.Lock()
	assert.Equal(t, "hello", repo.fields["bio"])
	assert.Equal(t, 25, repo.fields["age"])
	repo.mu.Unlock()
}
