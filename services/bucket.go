package services

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// Bucket именованный диапазон дней до истечения срока годности
type Bucket string

const (
	BucketUpTo4Weeks  Bucket = "0-4 weeks"
	Bucket5To10Weeks  Bucket = "5-10 weeks"
	Bucket11PlusWeeks Bucket = "11+ weeks"
	BucketAll         Bucket = "all"
)

// ErrInvalidBucket возвращается для неизвестного селектора
var ErrInvalidBucket = errors.New("unknown expiration bucket")

type dayRange struct {
	start, end int
	open       bool
}

// Дни 29-34 не попадают ни в один диапазон.
var bucketRanges = map[Bucket]dayRange{
	BucketUpTo4Weeks:  {start: 0, end: 28},
	Bucket5To10Weeks:  {start: 35, end: 70},
	Bucket11PlusWeeks: {start: 77, open: true},
}

// Buckets возвращает все селекторы в порядке отображения
func Buckets() []Bucket {
	return []Bucket{BucketUpTo4Weeks, Bucket5To10Weeks, Bucket11PlusWeeks, BucketAll}
}

// ParseBucket разбирает селектор; пустая строка означает BucketAll
func ParseBucket(s string) (Bucket, error) {
	if s == "" {
		return BucketAll, nil
	}
	b := Bucket(s)
	if b == BucketAll {
		return b, nil
	}
	if _, ok := bucketRanges[b]; !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidBucket, s)
	}
	return b, nil
}

// ContainsDays сообщает, попадает ли число дней в диапазон
func (b Bucket) ContainsDays(days int) bool {
	if b == BucketAll {
		return true
	}
	r, ok := bucketRanges[b]
	if !ok {
		return false
	}
	if days < r.start {
		return false
	}
	return r.open || days <= r.end
}

// DaysUntil число полных суток от now до t (отрицательное для прошедших дат)
func DaysUntil(t, now time.Time) int {
	return int(math.Floor(t.Sub(now).Hours() / 24))
}

// BucketFor возвращает первый диапазон, содержащий дату, или "" для промежутка
func BucketFor(t, now time.Time) Bucket {
	days := DaysUntil(t, now)
	for _, b := range Buckets() {
		if b != BucketAll && b.ContainsDays(days) {
			return b
		}
	}
	return ""
}
