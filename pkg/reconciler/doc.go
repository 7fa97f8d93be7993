/*
Package reconciler periodically sweeps the entity registries (rooms,
chars, users) to report cache occupancy and flag entities that have
stayed dirty across more than one sweep interval — usually a sign some
task opened a handle and never released it. It never mutates an entity;
this is observability, not garbage collection.

# Usage

	rec := reconciler.New(30*time.Second, roomsRegistry, charsRegistry, usersRegistry)
	rec.Start()
	defer rec.Stop()

# Design

Each sweep asks every registry for its current dirty id set and compares
it against the set from the previous sweep; an id present in both gets a
warning log. The comparison state is local to the Reconciler, not the
registries, so adding reconciler coverage never touches pkg/entity.
*/
package reconciler
