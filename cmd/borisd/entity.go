package main

import (
	"fmt"
	"strconv"

	"github.com/duskhold/boris/pkg/entity"
	"github.com/duskhold/boris/pkg/types"
	"github.com/spf13/cobra"
)

var entityCmd = &cobra.Command{
	Use:   "entity",
	Short: "Inspect and edit world records directly",
}

var entityGetCmd = &cobra.Command{
	Use:   "get <domain> <id> [field]",
	Short: "Print one field of a record, or every schema field if none is given",
	Args:  cobra.RangeArgs(2, 3),
	RunE:  runEntityGet,
}

var entitySetCmd = &cobra.Command{
	Use:   "set <domain> <id> <field> <value>",
	Short: "Set one field of a record",
	Args:  cobra.ExactArgs(4),
	RunE:  runEntitySet,
}

var entityNewCmd = &cobra.Command{
	Use:   "new <domain>",
	Short: "Allocate and persist a blank record",
	Args:  cobra.ExactArgs(1),
	RunE:  runEntityNew,
}

var entityLsCmd = &cobra.Command{
	Use:   "ls <domain>",
	Short: "List every record id stored for a domain",
	Args:  cobra.ExactArgs(1),
	RunE:  runEntityLs,
}

func init() {
	entityCmd.AddCommand(entityGetCmd, entitySetCmd, entityNewCmd, entityLsCmd)
}

func parseEntityID(raw string) (uint64, error) {
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q: %w", raw, err)
	}
	return id, nil
}

func runEntityGet(cmd *cobra.Command, args []string) error {
	domain, idArg := args[0], args[1]
	var field string
	if len(args) == 3 {
		field = args[2]
	}

	id, err := parseEntityID(idArg)
	if err != nil {
		return err
	}
	w, err := openInitializedWorld(cmd)
	if err != nil {
		return err
	}

	switch domain {
	case "rooms":
		return getEntity(w.Rooms, id, field, roomFieldNames())
	case "chars":
		return getEntity(w.Chars, id, field, charFieldNames())
	case "users":
		return getEntity(w.Users, id, field, userFieldNames())
	default:
		return fmt.Errorf("unknown domain %q", domain)
	}
}

func getEntity[T entity.Record](reg *entity.Registry[T], id uint64, field string, schemaFields []string) error {
	h, err := reg.Open(id)
	if err != nil {
		return err
	}
	defer h.Release()

	if field != "" {
		v, ok := h.Get(field)
		if !ok {
			return fmt.Errorf("field %q not found on id %d", field, id)
		}
		fmt.Println(v)
		return nil
	}
	for _, name := range schemaFields {
		v, _ := h.Get(name)
		fmt.Printf("%s: %s\n", name, v)
	}
	for _, e := range h.Value().Extras().Entries() {
		fmt.Printf("%s: %s\n", e.Name, e.Value)
	}
	return nil
}

func runEntitySet(cmd *cobra.Command, args []string) error {
	domain, idArg, field, value := args[0], args[1], args[2], args[3]

	id, err := parseEntityID(idArg)
	if err != nil {
		return err
	}
	w, err := openInitializedWorld(cmd)
	if err != nil {
		return err
	}

	switch domain {
	case "rooms":
		return setEntity(w.Rooms, id, field, value)
	case "chars":
		return setEntity(w.Chars, id, field, value)
	case "users":
		return setEntity(w.Users, id, field, value)
	default:
		return fmt.Errorf("unknown domain %q", domain)
	}
}

func setEntity[T entity.Record](reg *entity.Registry[T], id uint64, field, value string) error {
	h, err := reg.Open(id)
	if err != nil {
		return err
	}
	defer h.Release()

	if err := h.Set(field, value); err != nil {
		return err
	}
	fmt.Printf("✓ %s set on id %d\n", field, id)
	return nil
}

func runEntityNew(cmd *cobra.Command, args []string) error {
	domain := args[0]
	w, err := openInitializedWorld(cmd)
	if err != nil {
		return err
	}

	switch domain {
	case "rooms":
		return newEntity(w.Rooms)
	case "chars":
		return newEntity(w.Chars)
	case "users":
		return newEntity(w.Users)
	default:
		return fmt.Errorf("unknown domain %q", domain)
	}
}

func newEntity[T entity.Record](reg *entity.Registry[T]) error {
	h, err := reg.New()
	if err != nil {
		return err
	}
	defer h.Release()
	fmt.Printf("✓ created id %d\n", h.ID())
	return nil
}

func runEntityLs(cmd *cobra.Command, args []string) error {
	domain := args[0]
	w, err := openWorldForRead(cmd)
	if err != nil {
		return err
	}

	it, err := w.db.IteratorBegin(domain)
	if err != nil {
		return err
	}
	defer it.End()

	for {
		idStr, ok := it.Next()
		if !ok {
			break
		}
		fmt.Println(idStr)
	}
	return nil
}

// openInitializedWorld builds the world and runs domain_init/preflight on
// all three domains, the way any operator mutation needs to see a
// populated id pool.
func openInitializedWorld(cmd *cobra.Command) (*world, error) {
	configPath, _ := cmd.Flags().GetString("config")
	w, err := openWorld(configPath)
	if err != nil {
		return nil, err
	}
	if err := w.Init(); err != nil {
		return nil, err
	}
	return w, nil
}

// openWorldForRead builds the world without running preflight, for
// commands (ls) that only walk the on-disk directory.
func openWorldForRead(cmd *cobra.Command) (*world, error) {
	configPath, _ := cmd.Flags().GetString("config")
	return openWorld(configPath)
}

func roomFieldNames() []string {
	return fieldNames(types.RoomSchema())
}

func charFieldNames() []string {
	return fieldNames(types.CharacterSchema())
}

func userFieldNames() []string {
	return fieldNames(types.UserSchema())
}

func fieldNames[T entity.Record](schema []entity.Field[T]) []string {
	names := make([]string, len(schema))
	for i, f := range schema {
		names[i] = f.Name
	}
	return names
}
