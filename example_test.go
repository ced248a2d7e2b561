package membuf_test

import (
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/hupe1980/membuf"
)

// Example demonstrates the two ports of a pool.
func Example() {
	pool, err := membuf.New(
		membuf.WithMaxResources(4),
		membuf.WithDefaultSize(256),
		membuf.WithInitialCount(1),
	)
	if err != nil {
		log.Fatal(err)
	}
	defer pool.Close()

	cfg := pool.ConfigPort()
	if err := cfg.SetCount("3\n"); err != nil {
		log.Fatal(err)
	}
	if err := cfg.SetSize(1, "10\n"); err != nil {
		log.Fatal(err)
	}

	h, err := pool.Open(1)
	if err != nil {
		log.Fatal(err)
	}
	defer h.Close()

	n, _ := h.Write([]byte("hello"))
	fmt.Println("wrote", n)

	buf := make([]byte, 10)
	n, _ = h.Read(buf)
	fmt.Println("read", n)

	size, _ := cfg.Size(1)
	fmt.Print("size ", size)
	fmt.Print("count ", cfg.Count())
	// Output:
	// wrote 5
	// read 5
	// size 10
	// count 3
}

// Example_staleHandle shows that a handle does not follow its slot across a
// destroy and re-create.
func Example_staleHandle() {
	pool, err := membuf.New(membuf.WithInitialCount(2))
	if err != nil {
		log.Fatal(err)
	}
	defer pool.Close()

	h, _ := pool.Open(1)
	defer h.Close()

	_ = pool.SetActiveCount(1)
	_ = pool.SetActiveCount(2)

	_, err = h.Write([]byte("x"))
	fmt.Println(errors.Is(err, membuf.ErrStaleHandle))
	// Output: true
}

// Example_endOfBuffer shows the asymmetry between reads and writes at the
// end of a buffer.
func Example_endOfBuffer() {
	pool, err := membuf.Builder().DefaultSize(4).Build()
	if err != nil {
		log.Fatal(err)
	}
	defer pool.Close()

	h, _ := pool.Open(0)
	defer h.Close()

	_, _ = h.Write([]byte("abcd"))

	_, err = h.Write([]byte("e"))
	fmt.Println(errors.Is(err, membuf.ErrNoSpace))

	n, err := h.Read(make([]byte, 4))
	fmt.Println(n, err, h.Cursor())

	_, _ = h.Seek(1, io.SeekStart)
	rest, _ := io.ReadAll(io.LimitReader(h, 3))
	fmt.Println(string(rest))
	// Output:
	// true
	// 0 <nil> 0
	// bcd
}

// Example_partialGrowth shows growth stopping at the first failed allocation.
func Example_partialGrowth() {
	pool, err := membuf.New(
		membuf.WithDefaultSize(256),
		membuf.WithMemoryLimit(512),
	)
	if err != nil {
		log.Fatal(err)
	}
	defer pool.Close()

	err = pool.SetActiveCount(4)

	var ge *membuf.GrowthError
	if errors.As(err, &ge) {
		fmt.Println("reached", ge.Active, "of", ge.Target)
	}
	fmt.Println(errors.Is(err, membuf.ErrOutOfMemory), pool.ActiveCount())
	// Output:
	// reached 2 of 4
	// true 2
}
