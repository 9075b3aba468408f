package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/user-account-service/internal/handler"
	"github.com/iliyamo/user-account-service/internal/model"
	"github.com/iliyamo/user-account-service/internal/service"
)

const (
	adminID   = "a0000000-0000-4000-8000-000000000001"
	modID     = "b0000000-0000-4000-8000-000000000002"
	userDogID = "c0000000-0000-4000-8000-000000000003"
	userCatID = "d0000000-0000-4000-8000-000000000004"
)

func newUserFixture() (*handler.UserHandler, *stubUserStore) {
	users := newStubUserStore(
		model.User{ID: adminID, Username: "admin_ana", Email: "ana@gmail.com", Role: model.RoleAdmin, Group: "Dog"},
		model.User{ID: modID, Username: "mod_dog", Email: "mod@gmail.com", Role: model.RoleModerator, Group: "Dog"},
		model.User{ID: userDogID, Username: "user_dog", Email: "dog@gmail.com", Role: model.RoleUser, Group: "Dog"},
		model.User{ID: userCatID, Username: "user_cat", Email: "cat@gmail.com", Role: model.RoleUser, Group: "Cat"},
	)
	return handler.NewUserHandler(service.NewUserService(users, bcrypt.MinCost)), users
}

// asActor builds a context the way the bearer middleware would: with the
// authenticated user id injected under "user_id".
func asActor(e *echo.Echo, method, target, body, actorID string) (echo.Context, *httptest.ResponseRecorder) {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("user_id", actorID)
	return c, rec
}

func TestMeHandler(t *testing.T) {
	h, _ := newUserFixture()
	e := echo.New()

	c, rec := asActor(e, http.MethodGet, "/v1/users/me", "", userDogID)
	require.NoError(t, h.Me(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "user_dog", resp["username"])
}

func TestMeHandlerDeletedActor(t *testing.T) {
	h, _ := newUserFixture()
	e := echo.New()

	c, rec := asActor(e, http.MethodGet, "/v1/users/me", "", "e0000000-0000-4000-8000-00000000dead")
	require.NoError(t, h.Me(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListHandlerRoleScoping(t *testing.T) {
	h, _ := newUserFixture()
	e := echo.New()

	c, rec := asActor(e, http.MethodGet, "/v1/users", "", adminID)
	require.NoError(t, h.List(c))
	require.Equal(t, http.StatusOK, rec.Code)
	var all []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &all))
	assert.Len(t, all, 4)

	c, rec = asActor(e, http.MethodGet, "/v1/users", "", modID)
	require.NoError(t, h.List(c))
	require.Equal(t, http.StatusOK, rec.Code)
	var scoped []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &scoped))
	require.Len(t, scoped, 3)
	for _, u := range scoped {
		assert.Equal(t, "Dog", u["group"])
	}

	c, rec = asActor(e, http.MethodGet, "/v1/users", "", userDogID)
	require.NoError(t, h.List(c))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestListHandlerRejectsBadOrderBy(t *testing.T) {
	h, _ := newUserFixture()
	e := echo.New()

	c, rec := asActor(e, http.MethodGet, "/v1/users?order_by=sideways", "", adminID)
	require.NoError(t, h.List(c))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestGetByIDHandlerGroupBoundary(t *testing.T) {
	h, _ := newUserFixture()
	e := echo.New()

	view := func(actorID, targetID string) *httptest.ResponseRecorder {
		c, rec := asActor(e, http.MethodGet, "/v1/users/"+targetID, "", actorID)
		c.SetParamNames("id")
		c.SetParamValues(targetID)
		require.NoError(t, h.GetByID(c))
		return rec
	}

	assert.Equal(t, http.StatusOK, view(modID, userDogID).Code)
	// Cross-group and nonexistent ids are indistinguishable for
	// moderators.
	assert.Equal(t, http.StatusForbidden, view(modID, userCatID).Code)
	assert.Equal(t, http.StatusForbidden, view(modID, "e0000000-0000-4000-8000-00000000dead").Code)
	// Admins get the honest answer.
	assert.Equal(t, http.StatusNotFound, view(adminID, "e0000000-0000-4000-8000-00000000dead").Code)
	assert.Equal(t, http.StatusForbidden, view(userDogID, userCatID).Code)
}

func TestUpdateByIDHandlerAdminOnly(t *testing.T) {
	h, users := newUserFixture()
	e := echo.New()

	body := `{"name": "renamed", "username": "user_dog", "email": "dog@gmail.com", "role": "user", "group": "Dog"}`
	update := func(actorID, targetID string) *httptest.ResponseRecorder {
		c, rec := asActor(e, http.MethodPatch, "/v1/users/"+targetID, body, actorID)
		c.SetParamNames("id")
		c.SetParamValues(targetID)
		require.NoError(t, h.UpdateByID(c))
		return rec
	}

	assert.Equal(t, http.StatusForbidden, update(modID, userDogID).Code)
	assert.Equal(t, http.StatusForbidden, update(userCatID, userDogID).Code)
	assert.Equal(t, http.StatusOK, update(adminID, userDogID).Code)

	stored, err := users.GetByID(context.Background(), userDogID)
	require.NoError(t, err)
	assert.Equal(t, "renamed", stored.Name)
}

func TestUpdateMeHandler(t *testing.T) {
	h, _ := newUserFixture()
	e := echo.New()

	body := `{"name": "self", "username": "user_cat", "email": "cat@gmail.com", "role": "user", "group": "Cat"}`
	ctx, rec := asActor(e, http.MethodPatch, "/v1/users/me", body, userCatID)
	require.NoError(t, h.UpdateMe(ctx))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "self", resp["name"])
}

func TestDeleteMeHandler(t *testing.T) {
	h, users := newUserFixture()
	e := echo.New()

	ctx, rec := asActor(e, http.MethodDelete, "/v1/users/me", "", userCatID)
	require.NoError(t, h.DeleteMe(ctx))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	_, err := users.GetByID(context.Background(), userCatID)
	assert.Error(t, err)
}
