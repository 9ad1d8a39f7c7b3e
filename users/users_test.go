package users_test

import (
	"encoding/json"
	"testing"

	"github.com/jrsteele09/go-learning-portal/internal/utils"
	"github.com/jrsteele09/go-learning-portal/users"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	role, err := users.ParseRole(" Teacher ")
	require.NoError(t, err)
	require.Equal(t, users.RoleTeacher, role)

	_, err = users.ParseRole("janitor")
	require.Error(t, err)
}

func TestUser_UnmarshalAcceptsMongoID(t *testing.T) {
	var u users.User
	err := json.Unmarshal([]byte(`{"_id":"u-1","email":"a@b.com","role":"student","firstName":"Ada"}`), &u)
	require.NoError(t, err)
	require.Equal(t, "u-1", u.ID)
	require.Equal(t, users.RoleStudent, u.Role)
	require.Equal(t, "Ada", u.DisplayName())
}

func TestUser_UnmarshalRejectsUnknownRole(t *testing.T) {
	var u users.User
	err := json.Unmarshal([]byte(`{"id":"u-1","role":"superuser"}`), &u)
	require.Error(t, err)
}

func TestUser_UnmarshalWithoutRole(t *testing.T) {
	var u users.User
	err := json.Unmarshal([]byte(`{"_id":"u-1","email":"a@b.com"}`), &u)
	require.NoError(t, err)
	require.Equal(t, "u-1", u.ID)
	require.Empty(t, u.Role)
	require.False(t, u.Role.Valid())
}

func TestUser_CloneIsIndependent(t *testing.T) {
	u := &users.User{ID: "u-1", Email: "a@b.com"}
	c := u.Clone()
	c.Email = "changed@b.com"
	require.Equal(t, "a@b.com", u.Email)

	var nilUser *users.User
	require.Nil(t, nilUser.Clone())
}

func TestProfileUpdate_Empty(t *testing.T) {
	require.True(t, users.ProfileUpdate{}.Empty())
	require.False(t, users.ProfileUpdate{Bio: utils.Ptr("hi")}.Empty())
}

func TestUser_ApplyOnlySetsGivenFields(t *testing.T) {
	u := users.User{ID: "u-1", FirstName: "Ada", LastName: "Lovelace", Bio: "old"}
	got := u.Apply(users.ProfileUpdate{Bio: utils.Ptr("new"), Phone: utils.Ptr("")})

	require.Equal(t, "Ada", got.FirstName)
	require.Equal(t, "Lovelace", got.LastName)
	require.Equal(t, "new", got.Bio)
	require.Empty(t, got.Phone)
	require.Equal(t, "old", u.Bio)
}
