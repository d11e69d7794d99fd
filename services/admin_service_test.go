package services

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Truinfo/LivInSync/models"
	"github.com/Truinfo/LivInSync/utils"
)

func TestAdminAuthenticate(t *testing.T) {
	db := newTestDB(t)
	svc := NewAdminService(db, newTestConfig())

	hashed, err := utils.HashPassword("s3cret")
	require.NoError(t, err)
	require.NoError(t, db.Create(&models.Admin{
		Username: "admin",
		Password: hashed,
		Email:    "admin@truinfo.in",
		Phone:    "1234567890",
	}).Error)

	admin, err := svc.Authenticate("admin", "s3cret")
	require.NoError(t, err)
	require.Equal(t, "admin", admin.Username)

	_, err = svc.Authenticate("admin", "wrong")
	require.ErrorIs(t, err, ErrAdminPasswordIncorrect)

	_, err = svc.Authenticate("nobody", "s3cret")
	require.ErrorIs(t, err, ErrAdminNotFound)
}

func TestAdminUpdatePassword(t *testing.T) {
	db := newTestDB(t)
	svc := NewAdminService(db, newTestConfig())

	hashed, err := utils.HashPassword("old")
	require.NoError(t, err)
	admin := models.Admin{Username: "admin", Password: hashed, Email: "a@b.c", Phone: "1"}
	require.NoError(t, db.Create(&admin).Error)

	require.NoError(t, svc.UpdatePassword(admin.ID, "new"))

	_, err = svc.Authenticate("admin", "new")
	require.NoError(t, err)

	require.ErrorIs(t, svc.UpdatePassword(9999, "x"), ErrAdminNotFound)
}
