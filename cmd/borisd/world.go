package main

import (
	"fmt"

	"github.com/duskhold/boris/pkg/config"
	"github.com/duskhold/boris/pkg/entity"
	"github.com/duskhold/boris/pkg/fdb"
	"github.com/duskhold/boris/pkg/health"
	"github.com/duskhold/boris/pkg/log"
	"github.com/duskhold/boris/pkg/reconciler"
	"github.com/duskhold/boris/pkg/types"
)

// dataDir is the fixed root of the flat-file record database. It is never
// configurable — only the ambient, user-visible settings in pkg/config are.
const dataDir = "data"

// world holds the three domain registries together with the config that
// was loaded to build them.
type world struct {
	cfg     config.Config
	db      *fdb.DB
	Rooms   *entity.Registry[*types.Room]
	Chars   *entity.Registry[*types.Character]
	Users   *entity.Registry[*types.User]
	Checker *health.Checker
}

func loadConfig(configPath string) (config.Config, error) {
	if configPath == "" {
		return config.Default(), nil
	}
	return config.Load(configPath)
}

// openWorld builds the three registries against dataDir but does not run
// preflight — callers that need the domains initialized call Init.
func openWorld(configPath string) (*world, error) {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return nil, err
	}
	log.Init(log.Config{Level: log.Level(cfg.Log.Level), JSONOutput: cfg.Log.JSON})

	db := fdb.Open(dataDir)
	checker := health.NewChecker("rooms", "chars", "users")
	checker.RegisterComponent("rooms", false, "initializing")
	checker.RegisterComponent("chars", false, "initializing")
	checker.RegisterComponent("users", false, "initializing")

	w := &world{
		cfg:     cfg,
		db:      db,
		Rooms:   entity.NewRegistry(db, "rooms", types.RoomSchema(), types.NewBlankRoom, log.WithDomain("rooms")),
		Chars:   entity.NewRegistry(db, "chars", types.CharacterSchema(), types.NewBlankCharacter, log.WithDomain("chars")),
		Users:   entity.NewRegistry(db, "users", types.UserSchema(), types.NewBlankUser, log.WithDomain("users")),
		Checker: checker,
	}
	return w, nil
}

// Init runs domain_init and preflight on all three domains, in the fixed
// order rooms, chars, users, updating the health checker's readiness
// component for each domain as it completes.
func (w *world) Init() error {
	if err := w.Rooms.Init(); err != nil {
		w.Checker.UpdateComponent("rooms", false, err.Error())
		return fmt.Errorf("rooms: %w", err)
	}
	w.Checker.UpdateComponent("rooms", true, fmt.Sprintf("preflight complete, %d free ids", w.Rooms.FreeUnits()))

	if err := w.Chars.Init(); err != nil {
		w.Checker.UpdateComponent("chars", false, err.Error())
		return fmt.Errorf("chars: %w", err)
	}
	w.Checker.UpdateComponent("chars", true, fmt.Sprintf("preflight complete, %d free ids", w.Chars.FreeUnits()))

	if err := w.Users.Init(); err != nil {
		w.Checker.UpdateComponent("users", false, err.Error())
		return fmt.Errorf("users: %w", err)
	}
	w.Checker.UpdateComponent("users", true, fmt.Sprintf("preflight complete, %d free ids", w.Users.FreeUnits()))
	return nil
}

// reconcilerRegistries returns all three registries as the narrow
// interface the reconciler operates on.
func (w *world) reconcilerRegistries() []reconciler.Registry {
	return []reconciler.Registry{w.Rooms, w.Chars, w.Users}
}

