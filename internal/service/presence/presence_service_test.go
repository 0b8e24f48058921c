package presence

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

type fakeUserRepo struct {
	mu         sync.Mutex
	status     map[string]string
	lastActive map[string]time.Time
}

var _ mysql.UserRepository = (*fakeUserRepo)(nil)

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		status:     make(map[string]string),
		lastActive: make(map[string]time.Time),
	}
}

func (f *fakeUserRepo) FindByUuid(string) (*model.UserInfo, error) {
	return nil, errorx.New(errorx.CodeNotFound, "user not found")
}

func (f *fakeUserRepo) FindByEmail(string) (*model.UserInfo, error) {
	return nil, errorx.New(errorx.CodeNotFound, "user not found")
}

func (f *fakeUserRepo) FindByUsername(string) (*model.UserInfo, error) {
	return nil, errorx.New(errorx.CodeNotFound, "user not found")
}

func (f *fakeUserRepo) FindAllExcept(string) ([]model.UserInfo, error) { return nil, nil }

func (f *fakeUserRepo) Create(*model.UserInfo) error { return nil }

func (f *fakeUserRepo) UpdateFields(string, map[string]any) error { return nil }

func (f *fakeUserRepo) UpdateStatus(uuid string, status string, lastActive time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.status[uuid] = status
	f.lastActive[uuid] = lastActive
	return nil
}

func (f *fakeUserRepo) statusOf(uuid string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.status[uuid]
}

func (f *fakeUserRepo) lastActiveOf(uuid string) time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastActive[uuid]
}

func TestSetOnlineThenOffline(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewService(repo)

	require.NoError(t, svc.SetOnline("U1"))
	assert.Equal(t, constants.StatusOnline, repo.statusOf("U1"))

	require.NoError(t, svc.SetOffline("U1"))
	assert.Equal(t, constants.StatusOffline, repo.statusOf("U1"))
}

func TestHeartbeatRefreshesLastActive(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewService(repo)
	require.NoError(t, svc.SetOnline("U1"))
	first := repo.lastActiveOf("U1")

	time.Sleep(5 * time.Millisecond)
	require.NoError(t, svc.Heartbeat("U1"))

	assert.Equal(t, constants.StatusOnline, repo.statusOf("U1"))
	assert.True(t, repo.lastActiveOf("U1").After(first))
}
