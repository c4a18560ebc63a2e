package constant

import "time"

const (
	EachEventCapacityKey = "event:%d:capacity"
	RegistrationLock     = "registration:lock:%d:%s"
)

const (
	RegistrationLockDefaultTTL = 30 * time.Second
)
