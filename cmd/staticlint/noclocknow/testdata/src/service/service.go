package service

import "time"

func issuedAt() time.Time {
	return time.Now()
}
