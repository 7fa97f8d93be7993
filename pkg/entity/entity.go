// Package entity implements the reference-counted, dirty-tracked, schema-
// typed entity registry used identically by rooms, characters, and
// users. A Registry is parametric on a schema: the fixed, typed fields
// of its entity type, with everything else falling through to an
// attrlist.List of extras.
package entity

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/duskhold/boris/pkg/attrlist"
	"github.com/duskhold/boris/pkg/fdb"
	"github.com/duskhold/boris/pkg/freelist"
	"github.com/duskhold/boris/pkg/log"
	"github.com/duskhold/boris/pkg/metrics"
	"github.com/rs/zerolog"
)

// IDMax is the largest id a registry will ever assign or accept.
const IDMax = 32767

// Errors returned by registry operations. A caller sees ErrNotFound for
// any load failure (missing file, malformed record, unparseable schema
// field, or id mismatch) — the
// underlying fdb error is logged rather than propagated, since none of
// those distinctions change what the caller should do.
var (
	ErrNotFound   = errors.New("entity: not found")
	ErrOutOfSpace = errors.New("entity: id space exhausted")
	ErrDuplicate  = errors.New("entity: duplicate id during preflight")
)

// Record is the behavior every entity type must expose to its Registry.
// Concrete types (Room, Character, User in pkg/types) embed a Base that
// implements this.
type Record interface {
	GetID() uint64
	SetID(uint64)
	IsDirty() bool
	SetDirty(bool)
	Extras() *attrlist.List
}

// FieldKind documents how a schema field renders to and parses from its
// on-disk decimal/string form. It carries no behavior of its own — Get/Set
// do the real work — but keeps the schema self-describing.
type FieldKind int

const (
	FieldString FieldKind = iota
	FieldUnsigned
)

// Field is one entry of an entity's fixed schema: a name used on disk, and
// accessors bridging between the on-disk string form and the typed field.
type Field[T Record] struct {
	Name string
	Kind FieldKind
	Get  func(e T) string
	Set  func(e T, raw string) error
}

// ParseUnsigned is the canonical Set helper for FieldUnsigned fields.
func ParseUnsigned(raw string) (uint64, error) {
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("entity: %q is not a valid unsigned field: %w", raw, err)
	}
	return v, nil
}

// Base implements Record and is meant to be embedded by concrete entity
// structs (see pkg/types).
type Base struct {
	ID    uint64
	Dirty bool
	X     *attrlist.List
}

func NewBase(id uint64) Base {
	return Base{ID: id, X: attrlist.New()}
}

func (b *Base) GetID() uint64          { return b.ID }
func (b *Base) SetID(id uint64)        { b.ID = id }
func (b *Base) IsDirty() bool          { return b.Dirty }
func (b *Base) SetDirty(dirty bool)    { b.Dirty = dirty }
func (b *Base) Extras() *attrlist.List { return b.X }

type cacheEntry[T Record] struct {
	value    T
	refcount int
}

// Registry is a named tuple (domain, schema, id_pool, cache). It is not
// safe for concurrent use — the whole core runs on a single loop thread.
type Registry[T Record] struct {
	domain   string
	db       *fdb.DB
	schema   []Field[T]
	idPool   *freelist.Freelist
	cache    map[uint64]*cacheEntry[T]
	newBlank func(id uint64) T
	logger   zerolog.Logger
}

// NewRegistry constructs a Registry bound to domain, with the given field
// schema and a constructor for a blank entity of the concrete type.
func NewRegistry[T Record](db *fdb.DB, domain string, schema []Field[T], newBlank func(id uint64) T, logger zerolog.Logger) *Registry[T] {
	return &Registry[T]{
		domain:   domain,
		db:       db,
		schema:   schema,
		idPool:   freelist.New(1, IDMax),
		cache:    make(map[uint64]*cacheEntry[T]),
		newBlank: newBlank,
		logger:   logger,
	}
}

// Domain returns the registry's bound FDB domain name.
func (r *Registry[T]) Domain() string { return r.domain }

// CacheSize returns the number of entities currently cached.
func (r *Registry[T]) CacheSize() int { return len(r.cache) }

// FreeUnits returns the number of unallocated ids remaining.
func (r *Registry[T]) FreeUnits() uint64 { return r.idPool.FreeUnits() }

// DirtyCount returns the number of cached entities with an unsaved
// mutation. Used by the reconciler (pkg/reconciler) for observability.
func (r *Registry[T]) DirtyCount() int {
	n := 0
	for _, c := range r.cache {
		if c.value.IsDirty() {
			n++
		}
	}
	return n
}

// DirtyIDs returns the ids of every cached entity with an unsaved
// mutation. Used by the reconciler to flag entities dirty across more
// than one sweep.
func (r *Registry[T]) DirtyIDs() []uint64 {
	var ids []uint64
	for id, c := range r.cache {
		if c.value.IsDirty() {
			ids = append(ids, id)
		}
	}
	return ids
}

func (r *Registry[T]) fieldByName(name string) (Field[T], bool) {
	for _, f := range r.schema {
		if equalFold(f.Name, name) {
			return f, true
		}
	}
	return Field[T]{}, false
}

func equalFold(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := 0; i < len(a); i++ {
		ca, cb := a[i], b[i]
		if 'A' <= ca && ca <= 'Z' {
			ca += 'a' - 'A'
		}
		if 'A' <= cb && cb <= 'Z' {
			cb += 'a' - 'A'
		}
		if ca != cb {
			return false
		}
	}
	return true
}

// load reads the record from disk and populates the schema fields and
// extras, without touching the cache or the id pool. It is used by both
// Open and Init (preflight).
func (r *Registry[T]) load(id uint64) (T, error) {
	idStr := strconv.FormatUint(id, 10)
	rd, err := r.db.ReadBegin(r.domain, idStr)
	if err != nil {
		var zero T
		log.WithEntityID(r.domain, id).Debug().Err(err).Msg("load failed: read_begin")
		metrics.EntityLoadsTotal.WithLabelValues(r.domain, "not_found").Inc()
		return zero, ErrNotFound
	}

	e := r.newBlank(id)
	for rd.Next() {
		name, value := rd.Pair()
		if f, ok := r.fieldByName(name); ok {
			if err := f.Set(e, value); err != nil {
				var zero T
				_ = rd.End()
				log.WithEntityID(r.domain, id).Warn().Str("field", name).Err(err).Msg("load failed: field parse")
				metrics.EntityLoadsTotal.WithLabelValues(r.domain, "malformed").Inc()
				return zero, ErrNotFound
			}
			continue
		}
		e.Extras().SetOrAdd(name, value)
	}
	if err := rd.End(); err != nil {
		var zero T
		log.WithEntityID(r.domain, id).Warn().Err(err).Msg("load failed: malformed record")
		metrics.EntityLoadsTotal.WithLabelValues(r.domain, "malformed").Inc()
		return zero, ErrNotFound
	}

	if e.GetID() != id {
		var zero T
		log.WithEntityID(r.domain, id).Warn().Uint64("parsed_id", e.GetID()).Msg("load failed: id mismatch")
		metrics.EntityLoadsTotal.WithLabelValues(r.domain, "malformed").Inc()
		return zero, ErrNotFound
	}
	e.SetDirty(false)
	metrics.EntityLoadsTotal.WithLabelValues(r.domain, "miss").Inc()
	return e, nil
}

// writeOut performs the atomic FDB write of every schema field and every
// extras entry for e.
func (r *Registry[T]) writeOut(e T) error {
	idStr := strconv.FormatUint(e.GetID(), 10)
	w, err := r.db.WriteBegin(r.domain, idStr)
	if err != nil {
		return err
	}
	for _, f := range r.schema {
		if err := w.WritePair(f.Name, f.Get(e)); err != nil {
			w.Abort()
			_ = w.End()
			return err
		}
	}
	for _, x := range e.Extras().Entries() {
		if err := w.WritePair(x.Name, x.Value); err != nil {
			w.Abort()
			_ = w.End()
			return err
		}
	}
	return w.End()
}

// Init creates the FDB domain and runs preflight: it loads every record
// to validate parse integrity and id consistency, and reserves each id in
// the id pool via Thwack. A parse failure or a duplicate id is fatal —
// the caller should abort server startup, naming the offending id.
func (r *Registry[T]) Init() error {
	r.logger.Info().Msg("preflight starting")
	if err := r.db.DomainInit(r.domain); err != nil {
		return err
	}
	it, err := r.db.IteratorBegin(r.domain)
	if err != nil {
		return fmt.Errorf("entity: preflight %s: %w", r.domain, err)
	}
	defer it.End()

	for {
		idStr, ok := it.Next()
		if !ok {
			break
		}
		id, err := strconv.ParseUint(idStr, 10, 64)
		if err != nil || id < 1 || id > IDMax {
			return fmt.Errorf("entity: preflight %s: invalid record filename %q", r.domain, idStr)
		}
		if _, err := r.load(id); err != nil {
			return fmt.Errorf("entity: preflight %s: id %d failed to load: %w", r.domain, id, err)
		}
		if !r.idPool.Thwack(id, 1) {
			return fmt.Errorf("entity: preflight %s: %w: id %d", r.domain, ErrDuplicate, id)
		}
	}
	r.updatePoolMetric()
	r.logger.Info().Uint64("free_units", r.idPool.FreeUnits()).Msg("preflight complete")
	return nil
}

// Open returns a handle to the entity identified by id, loading it from
// disk on cache miss. It returns ErrNotFound if the record does not exist
// or fails to parse.
func (r *Registry[T]) Open(id uint64) (*Handle[T], error) {
	if c, ok := r.cache[id]; ok {
		c.refcount++
		metrics.EntityLoadsTotal.WithLabelValues(r.domain, "hit").Inc()
		return &Handle[T]{r: r, id: id}, nil
	}

	e, err := r.load(id)
	if err != nil {
		return nil, err
	}
	r.cache[id] = &cacheEntry[T]{value: e, refcount: 1}
	r.updateCacheMetric()
	return &Handle[T]{r: r, id: id}, nil
}

// New allocates a fresh id, writes a blank record for it immediately (so
// a crash right after New still finds the record on disk), caches it, and
// returns a handle with refcount 1. It returns ErrOutOfSpace if the id
// pool is exhausted.
func (r *Registry[T]) New() (*Handle[T], error) {
	id, ok := r.idPool.Alloc(1)
	if !ok {
		return nil, ErrOutOfSpace
	}
	r.updatePoolMetric()
	e := r.newBlank(id)
	e.SetDirty(true)
	if err := r.writeOut(e); err != nil {
		metrics.EntitySavesTotal.WithLabelValues(r.domain, "error").Inc()
		log.WithEntityID(r.domain, id).Error().Err(err).Msg("failed to persist new entity")
		return nil, err
	}
	metrics.EntitySavesTotal.WithLabelValues(r.domain, "ok").Inc()
	e.SetDirty(false)
	r.cache[id] = &cacheEntry[T]{value: e, refcount: 1}
	r.updateCacheMetric()
	return &Handle[T]{r: r, id: id}, nil
}

func (r *Registry[T]) updateCacheMetric() {
	metrics.EntityCacheSize.WithLabelValues(r.domain).Set(float64(len(r.cache)))
}

func (r *Registry[T]) updatePoolMetric() {
	metrics.FreelistFreeExtents.WithLabelValues(r.domain).Set(float64(len(r.idPool.Extents())))
	metrics.FreelistFreeUnits.WithLabelValues(r.domain).Set(float64(r.idPool.FreeUnits()))
}

// attrGet reads a schema field by name, falling back to the extras list.
func (r *Registry[T]) attrGet(id uint64, name string) (string, bool) {
	c := r.mustCached(id)
	if f, ok := r.fieldByName(name); ok {
		return f.Get(c.value), true
	}
	entry, ok := c.value.Extras().Find(name)
	if !ok {
		return "", false
	}
	return entry.Value, true
}

// attrSet writes a schema field by name, falling back to the extras list.
func (r *Registry[T]) attrSet(id uint64, name, value string) error {
	c := r.mustCached(id)
	if f, ok := r.fieldByName(name); ok {
		if err := f.Set(c.value, value); err != nil {
			return err
		}
		c.value.SetDirty(true)
		return nil
	}
	c.value.Extras().SetOrAdd(name, value)
	c.value.SetDirty(true)
	return nil
}

// save implements the lazy, idempotent save policy: a no-op unless dirty.
func (r *Registry[T]) save(id uint64) error {
	c := r.mustCached(id)
	if !c.value.IsDirty() {
		return nil
	}
	if err := r.writeOut(c.value); err != nil {
		// Leave dirty so a later save can retry.
		metrics.EntitySavesTotal.WithLabelValues(r.domain, "error").Inc()
		log.WithEntityID(r.domain, id).Error().Err(err).Msg("save failed")
		return err
	}
	metrics.EntitySavesTotal.WithLabelValues(r.domain, "ok").Inc()
	c.value.SetDirty(false)
	return nil
}

// release decrements refcount, and on the last release, saves if dirty
// and drops the entity from the cache. The id is never returned to the
// id pool.
func (r *Registry[T]) release(id uint64) {
	c, ok := r.cache[id]
	if !ok {
		panic(fmt.Sprintf("entity: refcount underflow releasing %s/%d", r.domain, id))
	}
	c.refcount--
	if c.refcount < 0 {
		panic(fmt.Sprintf("entity: refcount underflow releasing %s/%d", r.domain, id))
	}
	if c.refcount == 0 {
		if err := r.save(id); err != nil {
			log.WithEntityID(r.domain, id).Error().Err(err).Msg("save-on-release failed; entity remains dirty in memory")
		}
		delete(r.cache, id)
		r.updateCacheMetric()
	}
}

func (r *Registry[T]) mustCached(id uint64) *cacheEntry[T] {
	c, ok := r.cache[id]
	if !ok {
		panic(fmt.Sprintf("entity: operation on unopened handle %s/%d", r.domain, id))
	}
	return c
}

// Handle is a refcounted reference to a loaded entity. Handles are not
// safe to share across goroutines; the whole core is single-threaded.
type Handle[T Record] struct {
	r  *Registry[T]
	id uint64
}

// ID returns the entity's id.
func (h *Handle[T]) ID() uint64 { return h.id }

// Value returns the live entity value. Mutate it only through Set so the
// dirty flag stays accurate.
func (h *Handle[T]) Value() T { return h.r.mustCached(h.id).value }

// Get implements entity_attr_get.
func (h *Handle[T]) Get(name string) (string, bool) { return h.r.attrGet(h.id, name) }

// Set implements entity_attr_set.
func (h *Handle[T]) Set(name, value string) error { return h.r.attrSet(h.id, name, value) }

// Save implements entity_save.
func (h *Handle[T]) Save() error { return h.r.save(h.id) }

// Release implements entity_release.
func (h *Handle[T]) Release() { h.r.release(h.id) }
