package benchmark_test

import "sync/atomic"

type atomicCounter struct {
	n atomic.Int64
}

func (c *atomicCounter) inc() int {
	return int(c.n.Add(1) - 1)
}
