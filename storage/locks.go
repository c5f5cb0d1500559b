package storage

import (
	"context"
	"fmt"
	"time"
)

var lockContext = context.Background()

// Advisory locks over Redis SETNX. Check-then-write sequences (availability
// check before booking insert, balance check before payout debit) take one of
// these so two concurrent requests cannot both pass the check. The TTL caps
// how long a crashed handler can hold a key.

const lockTTL = 10 * time.Second

// AcquireLock takes the named advisory lock, waiting briefly if another
// request holds it. Returns false when the lock could not be obtained.
func AcquireLock(key string) bool {
	deadline := time.Now().Add(2 * time.Second)
	for {
		ok, err := Redis.SetNX(lockContext, key, "1", lockTTL).Result()
		if err != nil {
			return false
		}
		if ok {
			return true
		}
		if time.Now().After(deadline) {
			return false
		}
		time.Sleep(50 * time.Millisecond)
	}
}

func ReleaseLock(key string) {
	Redis.Del(lockContext, key)
}

func PropertyLockKey(propertyID uint) string {
	return fmt.Sprintf("lock:property:%d", propertyID)
}

func WalletLockKey(hostID uint) string {
	return fmt.Sprintf("lock:wallet:%d", hostID)
}
