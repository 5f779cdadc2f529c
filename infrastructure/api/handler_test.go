package api

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"rosterhub/auth"
	"rosterhub/domain/chat"
	"rosterhub/errors"
	"rosterhub/mocks"
	"rosterhub/repositories"
	"rosterhub/services"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type apiFixture struct {
	router   *gin.Engine
	chats    *mocks.MockIChatService
	profiles *mocks.MockIProfileRepository
	tokens   *auth.TokenManager
}

func newAPIFixture(t *testing.T) apiFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ctrl := gomock.NewController(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)

	f := apiFixture{
		chats:    mocks.NewMockIChatService(ctrl),
		profiles: mocks.NewMockIProfileRepository(ctrl),
		tokens:   auth.NewTokenManager("test-secret", time.Hour),
	}
	authService := services.NewAuthService(log, f.profiles, f.tokens)
	f.router = NewRouter(log, NewHandler(log, f.chats, authService, f.tokens), nil)
	return f
}

func (f apiFixture) do(t *testing.T, method, path, profileID string, body any) (*httptest.ResponseRecorder, Response) {
	t.Helper()
	var payload bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&payload).Encode(body))
	}
	r := httptest.NewRequest(method, path, &payload)
	r.Header.Set("Content-Type", "application/json")
	if profileID != "" {
		token, err := f.tokens.Generate(profileID, []string{"user"})
		require.NoError(t, err)
		r.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, r)

	var resp Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return w, resp
}

func TestHandler_CreateChat(t *testing.T) {
	req := require.New(t)
	f := newAPIFixture(t)
	created := chat.Chat{
		ID:      uuid.New(),
		From:    chat.ProfileSummary{ID: "alice", Name: "Alice"},
		To:      chat.ProfileSummary{ID: "bob", Name: "Bob"},
		Content: "practice at 6",
	}

	// The sender defaults to the caller
	f.chats.EXPECT().CreateChat(gomock.Any(), chat.CreateChatCommand{
		From: "alice", To: "bob", Content: "practice at 6", OrganizationID: "club-1",
	}).Return(created, nil)

	w, resp := f.do(t, http.MethodPost, "/api/v1/chats", "alice", map[string]string{
		"to": "bob", "content": "practice at 6", "organizationId": "club-1",
	})

	req.Equal(http.StatusCreated, w.Code)
	req.True(resp.Success)
	req.NotEmpty(w.Header().Get(headerRequestID))
	data, ok := resp.Data.(map[string]any)
	req.True(ok)
	req.Equal("practice at 6", data["content"])
	req.Equal("Alice", data["from"].(map[string]any)["name"])
}

func TestHandler_CreateChat_On_Behalf_Of_Someone_Else(t *testing.T) {
	req := require.New(t)
	f := newAPIFixture(t)
	f.chats.EXPECT().CreateChat(gomock.Any(), gomock.Any()).Times(0)

	w, resp := f.do(t, http.MethodPost, "/api/v1/chats", "mallory", map[string]string{
		"from": "alice", "to": "bob", "content": "hi", "organizationId": "club-1",
	})

	req.Equal(http.StatusForbidden, w.Code)
	req.False(resp.Success)
	req.Equal(errors.CodeForbidden, resp.Error.Code)
}

func TestHandler_CreateChat_Maps_Validation_Errors(t *testing.T) {
	req := require.New(t)
	f := newAPIFixture(t)
	f.chats.EXPECT().CreateChat(gomock.Any(), gomock.Any()).Return(chat.Chat{}, errors.ErrEmptyContent)

	w, resp := f.do(t, http.MethodPost, "/api/v1/chats", "alice", map[string]string{
		"to": "bob", "content": "   ", "organizationId": "club-1",
	})

	req.Equal(http.StatusBadRequest, w.Code)
	req.Equal(errors.CodeBadUserInput, resp.Error.Code)
	req.Equal(errors.ErrEmptyContent.Error(), resp.Error.Message)
}

func TestHandler_Requires_Token(t *testing.T) {
	req := require.New(t)
	f := newAPIFixture(t)

	w, resp := f.do(t, http.MethodGet, "/api/v1/organizations/club-1/chats", "", nil)

	req.Equal(http.StatusUnauthorized, w.Code)
	req.Equal(errors.CodeUnauthenticated, resp.Error.Code)
}

func TestHandler_MarkChatAsSeen_Uses_Caller_As_Viewer(t *testing.T) {
	req := require.New(t)
	f := newAPIFixture(t)
	f.chats.EXPECT().MarkChatAsSeen(gomock.Any(), chat.MarkSeenCommand{
		PeerID: "alice", OrganizationID: "club-1", ViewerID: "bob",
	}).Return(true, nil)

	w, resp := f.do(t, http.MethodPost, "/api/v1/chats/seen", "bob", map[string]string{
		"userId": "alice", "organizationId": "club-1",
	})

	req.Equal(http.StatusOK, w.Code)
	req.Equal(true, resp.Data)
}

func TestHandler_Queries(t *testing.T) {
	f := newAPIFixture(t)
	one := []chat.Chat{{ID: uuid.New(), Content: "hi"}}

	f.chats.EXPECT().GetAllChats(gomock.Any(), chat.GetAllChatsCommand{OrganizationID: "club-1", ViewerID: "alice"}).Return(one, nil)
	f.chats.EXPECT().GetChatByUser(gomock.Any(), chat.GetChatByUserCommand{OrganizationID: "club-1", UserID: "bob", ViewerID: "alice"}).Return(one, nil)
	f.chats.EXPECT().GetChatsBetweenUsers(gomock.Any(), chat.GetChatsBetweenUsersCommand{OrganizationID: "club-1", UserA: "alice", UserB: "bob", ViewerID: "alice"}).Return(one, nil)
	f.chats.EXPECT().SearchChats(gomock.Any(), chat.SearchChatsCommand{OrganizationID: "club-1", Input: "hi", ViewerID: "alice"}).Return(nil, nil)

	tests := []struct {
		name string
		path string
		want int
	}{
		{"All chats", "/api/v1/organizations/club-1/chats", 1},
		{"By user", "/api/v1/organizations/club-1/users/bob/chats", 1},
		{"Between users", "/api/v1/organizations/club-1/chats/between?userA=alice&userB=bob", 1},
		{"Search without result", "/api/v1/organizations/club-1/chats/search?q=hi", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := require.New(t)

			w, resp := f.do(t, http.MethodGet, tt.path, "alice", nil)

			req.Equal(http.StatusOK, w.Code)
			data, ok := resp.Data.([]any)
			req.True(ok)
			req.Len(data, tt.want)
		})
	}
}

func TestHandler_Query_Not_Member(t *testing.T) {
	req := require.New(t)
	f := newAPIFixture(t)
	f.chats.EXPECT().GetAllChats(gomock.Any(), gomock.Any()).Return(nil, errors.ErrNotMember)

	w, resp := f.do(t, http.MethodGet, "/api/v1/organizations/other/chats", "alice", nil)

	req.Equal(http.StatusBadRequest, w.Code)
	req.Equal(errors.CodeBadUserInput, resp.Error.Code)
}

func TestHandler_Register_And_Login(t *testing.T) {
	req := require.New(t)
	f := newAPIFixture(t)
	password := "ComplexPass123!"

	var stored repositories.Profile
	f.profiles.EXPECT().CreateProfile("Coach", "coach@example.com", gomock.Any()).
		DoAndReturn(func(name, email, hash string) (repositories.Profile, error) {
			stored = repositories.Profile{ID: "coach-1", Name: name, Email: email, PasswordHash: hash, Roles: []string{"user"}}
			return stored, nil
		})
	f.profiles.EXPECT().AddMember("club-1", "coach-1").Return(nil)

	w, resp := f.do(t, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"name": "Coach", "email": "coach@example.com", "password": password, "organizationId": "club-1",
	})
	req.Equal(http.StatusCreated, w.Code)
	req.True(resp.Success)

	f.profiles.EXPECT().GetProfileByEmail("coach@example.com").DoAndReturn(func(string) (repositories.Profile, error) {
		return stored, nil
	})
	w, resp = f.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email": "coach@example.com", "password": password,
	})
	req.Equal(http.StatusOK, w.Code)
	token := resp.Data.(map[string]any)["token"].(string)
	claims, err := f.tokens.Validate(token)
	req.NoError(err)
	req.Equal("coach-1", claims.ProfileID)
}

func TestHandler_Login_Wrong_Password(t *testing.T) {
	req := require.New(t)
	f := newAPIFixture(t)
	f.profiles.EXPECT().GetProfileByEmail("coach@example.com").Return(repositories.Profile{}, errors.ErrProfileNotFound)

	w, resp := f.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email": "coach@example.com", "password": "whatever",
	})

	req.Equal(http.StatusUnauthorized, w.Code)
	req.Equal(errors.CodeUnauthenticated, resp.Error.Code)
}

func TestHandler_Health(t *testing.T) {
	req := require.New(t)
	f := newAPIFixture(t)

	r := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, r)

	req.Equal(http.StatusOK, w.Code)
	req.JSONEq(`{"status":"ok"}`, w.Body.String())
}
