// Package types defines the three concrete entity schemas the server
// ships — Room, Character, and User — as thin typed projections over the
// generic entity.Record shape (pkg/entity). Each schema lists its fixed
// fields; everything else a record carries falls through to its extras
// attribute list.
package types

import (
	"strconv"

	"github.com/duskhold/boris/pkg/entity"
)

// RoomFlag bits, stored in Room.Flags.
const (
	RoomFlagNoMob uint64 = 1 << iota
	RoomFlagIndoor
	RoomFlagSilent
)

// Room is a location in the world graph. Exits live in its extras as
// "exit.<direction>" attributes rather than a fixed field, so new
// directions never require a schema change.
type Room struct {
	entity.Base
	Name        string
	Description string
	Owner       uint64
	Flags       uint64
}

func NewBlankRoom(id uint64) *Room {
	return &Room{Base: entity.NewBase(id)}
}

// RoomSchema is the fixed field table for the "rooms" domain.
func RoomSchema() []entity.Field[*Room] {
	return []entity.Field[*Room]{
		{
			Name: "id",
			Kind: entity.FieldUnsigned,
			Get:  func(r *Room) string { return strconv.FormatUint(r.GetID(), 10) },
			Set:  setUintField((*Room).SetID),
		},
		{
			Name: "name",
			Kind: entity.FieldString,
			Get:  func(r *Room) string { return r.Name },
			Set:  func(r *Room, raw string) error { r.Name = raw; return nil },
		},
		{
			Name: "description",
			Kind: entity.FieldString,
			Get:  func(r *Room) string { return r.Description },
			Set:  func(r *Room, raw string) error { r.Description = raw; return nil },
		},
		{
			Name: "owner",
			Kind: entity.FieldUnsigned,
			Get:  func(r *Room) string { return strconv.FormatUint(r.Owner, 10) },
			Set:  setUintField(func(r *Room, v uint64) { r.Owner = v }),
		},
		{
			Name: "flags",
			Kind: entity.FieldUnsigned,
			Get:  func(r *Room) string { return strconv.FormatUint(r.Flags, 10) },
			Set:  setUintField(func(r *Room, v uint64) { r.Flags = v }),
		},
	}
}

// Exit returns the room id a direction leads to, if set.
func (r *Room) Exit(direction string) (uint64, bool) {
	entry, ok := r.Extras().Find("exit." + direction)
	if !ok {
		return 0, false
	}
	v, err := strconv.ParseUint(entry.Value, 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// SetExit records direction leading to roomID in the extras list.
func (r *Room) SetExit(direction string, roomID uint64) {
	r.Extras().SetOrAdd("exit."+direction, strconv.FormatUint(roomID, 10))
}

// setUintField adapts a (T, uint64) setter into an entity.Field Set
// function shared by every unsigned schema field across Room, Character,
// and User.
func setUintField[T entity.Record](set func(T, uint64)) func(T, string) error {
	return func(e T, raw string) error {
		v, err := entity.ParseUnsigned(raw)
		if err != nil {
			return err
		}
		set(e, v)
		return nil
	}
}
