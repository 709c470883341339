package cache

import (
	"github.com/gomodule/redigo/redis"
)

const snapshotPrefix = "session:"

// SnapshotStore keeps serialized session snapshots in redis, one key per
// room code, last writer wins. It satisfies the game engine's persistence
// contract.
type SnapshotStore struct {
	pool *redis.Pool
}

func NewSnapshotStore(pool *redis.Pool) *SnapshotStore {
	return &SnapshotStore{pool: pool}
}

func (s *SnapshotStore) Save(code string, data []byte) error {
	conn := s.pool.Get()
	defer conn.Close()
	return Set(snapshotPrefix+code, data, &conn)
}

func (s *SnapshotStore) Load(code string) ([]byte, error) {
	conn := s.pool.Get()
	defer conn.Close()
	return Get(snapshotPrefix+code, &conn)
}

func (s *SnapshotStore) Delete(code string) error {
	conn := s.pool.Get()
	defer conn.Close()
	return Del(snapshotPrefix+code, &conn)
}

// Codes lists every room code with a stored snapshot.
func (s *SnapshotStore) Codes() ([]string, error) {
	conn := s.pool.Get()
	defer conn.Close()
	keys, err := Keys(snapshotPrefix+"*", &conn)
	if err != nil {
		return nil, err
	}
	codes := make([]string, 0, len(keys))
	for _, k := range keys {
		codes = append(codes, k[len(snapshotPrefix):])
	}
	return codes, nil
}
