package types

import (
	"strconv"

	"github.com/duskhold/boris/pkg/entity"
)

// Character is a player avatar, owned by a User and located in a Room.
type Character struct {
	entity.Base
	Name  string
	Owner uint64
	Room  uint64
	Level uint64
	HP    uint64
}

func NewBlankCharacter(id uint64) *Character {
	return &Character{Base: entity.NewBase(id)}
}

// CharacterSchema is the fixed field table for the "chars" domain.
func CharacterSchema() []entity.Field[*Character] {
	return []entity.Field[*Character]{
		{
			Name: "id",
			Kind: entity.FieldUnsigned,
			Get:  func(c *Character) string { return strconv.FormatUint(c.GetID(), 10) },
			Set:  setUintField((*Character).SetID),
		},
		{
			Name: "name",
			Kind: entity.FieldString,
			Get:  func(c *Character) string { return c.Name },
			Set:  func(c *Character, raw string) error { c.Name = raw; return nil },
		},
		{
			Name: "owner",
			Kind: entity.FieldUnsigned,
			Get:  func(c *Character) string { return strconv.FormatUint(c.Owner, 10) },
			Set:  setUintField(func(c *Character, v uint64) { c.Owner = v }),
		},
		{
			Name: "room",
			Kind: entity.FieldUnsigned,
			Get:  func(c *Character) string { return strconv.FormatUint(c.Room, 10) },
			Set:  setUintField(func(c *Character, v uint64) { c.Room = v }),
		},
		{
			Name: "level",
			Kind: entity.FieldUnsigned,
			Get:  func(c *Character) string { return strconv.FormatUint(c.Level, 10) },
			Set:  setUintField(func(c *Character, v uint64) { c.Level = v }),
		},
		{
			Name: "hp",
			Kind: entity.FieldUnsigned,
			Get:  func(c *Character) string { return strconv.FormatUint(c.HP, 10) },
			Set:  setUintField(func(c *Character, v uint64) { c.HP = v }),
		},
	}
}

// Inventory returns the item ids carried in extras ("item.0", "item.1", ...
// until the first gap).
func (c *Character) Inventory() []string {
	var out []string
	for i := 0; ; i++ {
		entry, ok := c.Extras().Find("item." + strconv.Itoa(i))
		if !ok {
			break
		}
		out = append(out, entry.Value)
	}
	return out
}
