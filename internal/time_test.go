package internal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNowNano(t *testing.T) {
	is := assert.New(t)

	got1 := NowNano()
	is.GreaterOrEqual(got1, int64(0))

	time.Sleep(10 * time.Millisecond)

	got2 := NowNano()
	is.GreaterOrEqual(got2-got1, int64(10*time.Millisecond))

	got3 := []int64{}
	for i := 0; i < 100; i++ {
		got3 = append(got3, NowNano())
		time.Sleep(1 * time.Microsecond)
	}
	is.IsIncreasing(got3)
}
