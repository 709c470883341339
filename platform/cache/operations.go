package cache

import (
	"github.com/gomodule/redigo/redis"
)

func Get(key string, conn *redis.Conn) ([]byte, error) {
	return redis.Bytes((*conn).Do("GET", key))
}

func Set(key string, value interface{}, conn *redis.Conn) error {
	_, err := (*conn).Do("SET", key, value)
	return err
}

func Del(key string, conn *redis.Conn) error {
	_, err := (*conn).Do("DEL", key)
	return err
}

func Keys(pattern string, conn *redis.Conn) ([]string, error) {
	var keys []string
	cursor := 0
	for {
		values, err := redis.Values((*conn).Do("SCAN", cursor, "MATCH", pattern))
		if err != nil {
			return nil, err
		}
		var batch []string
		if _, err := redis.Scan(values, &cursor, &batch); err != nil {
			return nil, err
		}
		keys = append(keys, batch...)
		if cursor == 0 {
			return keys, nil
		}
	}
}
