package types

import (
	"strconv"

	"github.com/duskhold/boris/pkg/entity"
)

// User account flag bits, stored in User.Flags.
const (
	UserFlagAdmin uint64 = 1 << iota
	UserFlagBanned
)

// User is an account. PasswordHash holds the salted digest produced by
// pkg/security, never a plaintext password.
type User struct {
	entity.Base
	Name         string
	PasswordHash string
	Flags        uint64
}

func NewBlankUser(id uint64) *User {
	return &User{Base: entity.NewBase(id)}
}

// UserSchema is the fixed field table for the "users" domain.
func UserSchema() []entity.Field[*User] {
	return []entity.Field[*User]{
		{
			Name: "id",
			Kind: entity.FieldUnsigned,
			Get:  func(u *User) string { return strconv.FormatUint(u.GetID(), 10) },
			Set:  setUintField((*User).SetID),
		},
		{
			Name: "name",
			Kind: entity.FieldString,
			Get:  func(u *User) string { return u.Name },
			Set:  func(u *User, raw string) error { u.Name = raw; return nil },
		},
		{
			Name: "password_hash",
			Kind: entity.FieldString,
			Get:  func(u *User) string { return u.PasswordHash },
			Set:  func(u *User, raw string) error { u.PasswordHash = raw; return nil },
		},
		{
			Name: "flags",
			Kind: entity.FieldUnsigned,
			Get:  func(u *User) string { return strconv.FormatUint(u.Flags, 10) },
			Set:  setUintField(func(u *User, v uint64) { u.Flags = v }),
		},
	}
}

// Banned reports whether the account's ban flag is set.
func (u *User) Banned() bool { return u.Flags&UserFlagBanned != 0 }
