package membuf

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/hupe1980/membuf/internal/conv"
)

// ConfigPort is the textual attribute surface of a Pool: one size attribute
// per resource, one pool-wide count attribute and the read-only default size.
//
// Values are rendered as "<decimal>\n". Values are parsed as unsigned base-10
// integers; trailing whitespace, such as the newline left by
// `echo 10 > size`, is ignored.
type ConfigPort struct {
	pool *Pool
}

// Size returns the size attribute of resource id.
func (c *ConfigPort) Size(id int) (string, error) {
	r, err := c.pool.Resource(id)
	if err != nil {
		return "", err
	}
	size := r.Size()
	if size == 0 {
		return "", fmt.Errorf("%w: %s", ErrNotAllocated, r.Name())
	}
	return formatUint(size), nil
}

// SetSize parses text and resizes resource id.
//
// Unparseable text fails with ErrInvalidArgument, zero or an oversized value
// with ErrOutOfRange. ErrOutOfMemory from the resize leaves the previous
// size and contents in effect.
func (c *ConfigPort) SetSize(id int, text string) error {
	r, err := c.pool.Resource(id)
	if err != nil {
		return err
	}
	n, err := parseUint("size", text)
	if err != nil {
		return err
	}
	if n == 0 {
		return &RangeError{Name: "size", Value: 0, Min: 1, Max: c.pool.opts.maxResourceSize}
	}
	return r.Resize(n)
}

// Count returns the active resource count attribute.
func (c *ConfigPort) Count() string {
	return formatUint(c.pool.ActiveCount())
}

// SetCount parses text and grows or shrinks the pool.
//
// On a partial growth the error is returned and Count reports how far the
// pool got.
func (c *ConfigPort) SetCount(text string) error {
	n, err := parseUint("count", text)
	if err != nil {
		return err
	}
	if limit := c.pool.MaxResources(); n > limit {
		return &RangeError{Name: "count", Value: n, Min: 0, Max: limit}
	}
	return c.pool.SetActiveCount(n)
}

// DefaultSize returns the read-only default size attribute.
func (c *ConfigPort) DefaultSize() string {
	return formatUint(c.pool.DefaultSize())
}

func formatUint(v int) string {
	return strconv.Itoa(v) + "\n"
}

// parseUint parses an unsigned decimal. Values that overflow are out of range
// rather than invalid, matching kstrtouint.
func parseUint(name, text string) (int, error) {
	s := strings.TrimRight(text, " \t\r\n\v\f")
	// kstrtouint accepts one leading plus sign.
	s = strings.TrimPrefix(s, "+")

	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return 0, fmt.Errorf("%w: %s %q", ErrOutOfRange, name, s)
		}
		return 0, fmt.Errorf("%w: %s %q is not an unsigned decimal", ErrInvalidArgument, name, s)
	}

	n, err := conv.Uint64ToInt(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %w", ErrOutOfRange, name, err)
	}
	return n, nil
}
