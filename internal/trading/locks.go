package trading

import (
	"hash/fnv"
	"sync"

	"github.com/google/uuid"
)

const lockShards = 64

// publicationLocks serializes negotiation operations per publication. The
// accept cascade's correctness (exactly one winner, all losers rejected)
// depends on no interleaving mutation of the offer set between the aggregate
// load and the commit, so every operation holds the publication's lock for
// its full load-validate-commit sequence.
type publicationLocks struct {
	shards [lockShards]sync.Mutex
}

func newPublicationLocks() *publicationLocks {
	return &publicationLocks{}
}

func (l *publicationLocks) lock(id uuid.UUID) *sync.Mutex {
	h := fnv.New32a()
	h.Write(id[:])
	mu := &l.shards[h.Sum32()%lockShards]
	mu.Lock()
	return mu
}
