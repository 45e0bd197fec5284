package core

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

var (
	ownersMu sync.Mutex
	owners   = map[uuid.UUID]interface{}{}
)

// IdentifierAquireNewID registers owner under a fresh random identifier.
func IdentifierAquireNewID(owner interface{}) uuid.UUID {
	ownersMu.Lock()
	defer ownersMu.Unlock()

	for {
		id := uuid.New()
		if _, taken := owners[id]; !taken {
			owners[id] = owner
			return id
		}
	}
}

// IdentifierOwner returns the owner registered under id.
func IdentifierOwner(id uuid.UUID) (interface{}, bool) {
	ownersMu.Lock()
	defer ownersMu.Unlock()
	owner, ok := owners[id]
	return owner, ok
}

func IdentifierReleaseID(id uuid.UUID) error {
	ownersMu.Lock()
	defer ownersMu.Unlock()

	if _, ok := owners[id]; !ok {
		return fmt.Errorf("identifier_release_id: id '%s' is not registered. Nothing was done", id)
	}
	delete(owners, id)
	return nil
}
