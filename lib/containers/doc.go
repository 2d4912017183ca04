// Package containers provides typed containers on top of an ordered byte keyed store.
//
// A container is declared once, bound to a byte prefix, and accessed through an
// accessor bound to a store.IStore:
//
//	var (
//		counter = containers.NewItem(0, encoding.LittleEndian[uint64]())
//		users   = containers.NewMap(1, containers.StringKey(), containers.ItemValue(encoding.JSON[User]()))
//		scores  = containers.NewMap(2, containers.StringKey(),
//			containers.MapValue(containers.StringKey(), containers.ItemValue(encoding.LittleEndian[int64]())))
//	)
//
//	err := counter.Access(s).Set(42)
//	alice, err := users.Access(s).Get("alice")
//	user, ok, err := alice.Get()
//
//	for entry, err := range users.Access(s).Iter() {
//		...
//	}
//
// Key Components:
//
//   - Branch: a view of a store restricted to a key prefix. All containers read and
//     write through branches, so containers with distinct prefixes never overlap.
//
//   - Storable: the contract shared by containers. It binds a container to a branch
//     (AccessImpl) and decodes key suffixes and values found in the branch.
//
//   - Item: a single value stored at the container's own prefix.
//
//   - Map: a keyed collection of inner containers (Items or Maps). A map key is stored
//     as a length prefixed segment [len(seg)] ++ seg, with seg at most 255 bytes.
//
//   - Iteration: Map accessors expose lazy iter.Seq2 sequences that decode every entry
//     on demand. A corrupt entry is reported as a *KeyValueDecodeError for that entry
//     and the iteration continues.
//
// Persisted Layout:
//
//	Item at prefix P:              P
//	Map entry (Item values):       P ++ [len(s)] ++ s
//	Nested map entry:              P ++ [len(s)] ++ s ++ [len(s2)] ++ s2
//
// Concurrency:
//
//	The containers add no locking. Accessors hold a plain reference to the store and
//	every call goes straight through to it. ItemAccess.Update is a read followed by a
//	write and may lose updates under concurrent writers; atomicity is the
//	responsibility of the store or the caller. Writing to a range that is being
//	iterated is allowed only if the store supports it (maple does).
package containers
