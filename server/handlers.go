package server

import (
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/hupe1980/membuf"
)

// maxAttrBytes bounds the body of an attribute write.
const maxAttrBytes = 64

// CursorHeader carries a session's cursor after a read.
const CursorHeader = "X-Membuf-Cursor"

// SessionResponse describes an open session.
type SessionResponse struct {
	Session    string `json:"session"`
	Resource   int    `json:"resource"`
	Name       string `json:"name"`
	Generation uint64 `json:"generation"`
}

// CursorResponse reports a session's cursor after a write or seek.
type CursorResponse struct {
	Written int `json:"written,omitempty"`
	Cursor  int `json:"cursor"`
}

func (s *Server) getCount(c echo.Context) error {
	return c.String(http.StatusOK, s.pool.ConfigPort().Count())
}

func (s *Server) putCount(c echo.Context) error {
	text, err := readAttr(c)
	if err != nil {
		return s.handleError(c, err, "invalid count")
	}
	if err := s.pool.ConfigPort().SetCount(text); err != nil {
		return s.handleError(c, err, "failed to set count")
	}
	return c.String(http.StatusOK, s.pool.ConfigPort().Count())
}

func (s *Server) getDefaultSize(c echo.Context) error {
	return c.String(http.StatusOK, s.pool.ConfigPort().DefaultSize())
}

func (s *Server) getStats(c echo.Context) error {
	return c.JSON(http.StatusOK, s.pool.Stats())
}

func (s *Server) getSize(c echo.Context) error {
	id, err := resourceID(c)
	if err != nil {
		return s.handleError(c, err, "invalid resource id")
	}
	size, err := s.pool.ConfigPort().Size(id)
	if err != nil {
		return s.handleError(c, err, "failed to get size")
	}
	return c.String(http.StatusOK, size)
}

func (s *Server) putSize(c echo.Context) error {
	id, err := resourceID(c)
	if err != nil {
		return s.handleError(c, err, "invalid resource id")
	}
	text, err := readAttr(c)
	if err != nil {
		return s.handleError(c, err, "invalid size")
	}
	if err := s.pool.ConfigPort().SetSize(id, text); err != nil {
		return s.handleError(c, err, "failed to resize")
	}
	size, err := s.pool.ConfigPort().Size(id)
	if err != nil {
		return s.handleError(c, err, "failed to get size")
	}
	return c.String(http.StatusOK, size)
}

func (s *Server) openSession(c echo.Context) error {
	id, err := resourceID(c)
	if err != nil {
		return s.handleError(c, err, "invalid resource id")
	}
	h, err := s.pool.IOPort().Open(id)
	if err != nil {
		return s.handleError(c, err, "failed to open resource")
	}
	sid := s.sessions.add(h)

	return c.JSON(http.StatusCreated, SessionResponse{
		Session:    sid,
		Resource:   id,
		Name:       membuf.ResourceName(id),
		Generation: h.Generation(),
	})
}

func (s *Server) readSession(c echo.Context) error {
	h, err := s.sessions.get(c.Param("sid"))
	if err != nil {
		return s.handleError(c, err, "unknown session")
	}

	n := s.cfg.MaxReadBytes
	if q := c.QueryParam("len"); q != "" {
		n, err = strconv.Atoi(q)
		if err != nil || n < 0 {
			return s.handleError(c, fmt.Errorf("%w: len %q", membuf.ErrInvalidArgument, q), "invalid length")
		}
		if n > s.cfg.MaxReadBytes {
			return s.handleError(c, &membuf.RangeError{Name: "len", Value: n, Min: 0, Max: s.cfg.MaxReadBytes}, "read too large")
		}
	}

	buf := make([]byte, n)
	read, err := h.Read(buf)
	if err != nil {
		return s.handleError(c, err, "read failed")
	}

	c.Response().Header().Set(CursorHeader, strconv.Itoa(h.Cursor()))
	return c.Blob(http.StatusOK, echo.MIMEOctetStream, buf[:read])
}

func (s *Server) writeSession(c echo.Context) error {
	h, err := s.sessions.get(c.Param("sid"))
	if err != nil {
		return s.handleError(c, err, "unknown session")
	}

	data, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return s.handleError(c, err, "failed to read body")
	}

	n, err := h.Write(data)
	if err != nil {
		return s.handleError(c, err, "write failed")
	}
	return c.JSON(http.StatusOK, CursorResponse{Written: n, Cursor: h.Cursor()})
}

func (s *Server) seekSession(c echo.Context) error {
	h, err := s.sessions.get(c.Param("sid"))
	if err != nil {
		return s.handleError(c, err, "unknown session")
	}

	offset, err := strconv.ParseInt(c.QueryParam("offset"), 10, 64)
	if err != nil {
		return s.handleError(c, fmt.Errorf("%w: offset %q", membuf.ErrInvalidArgument, c.QueryParam("offset")), "invalid offset")
	}
	whence, err := parseWhence(c.QueryParam("whence"))
	if err != nil {
		return s.handleError(c, err, "invalid whence")
	}

	pos, err := h.Seek(offset, whence)
	if err != nil {
		return s.handleError(c, err, "seek failed")
	}
	return c.JSON(http.StatusOK, CursorResponse{Cursor: int(pos)})
}

func (s *Server) closeSession(c echo.Context) error {
	if err := s.sessions.remove(c.Param("sid")); err != nil {
		return s.handleError(c, err, "unknown session")
	}
	return c.NoContent(http.StatusNoContent)
}

func resourceID(c echo.Context) (int, error) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return 0, fmt.Errorf("%w: resource id %q", membuf.ErrInvalidArgument, c.Param("id"))
	}
	return id, nil
}

func readAttr(c echo.Context) (string, error) {
	b, err := io.ReadAll(io.LimitReader(c.Request().Body, maxAttrBytes+1))
	if err != nil {
		return "", err
	}
	if len(b) > maxAttrBytes {
		return "", fmt.Errorf("%w: attribute longer than %d bytes", membuf.ErrInvalidArgument, maxAttrBytes)
	}
	return string(b), nil
}

func parseWhence(s string) (int, error) {
	switch s {
	case "", "start":
		return io.SeekStart, nil
	case "current":
		return io.SeekCurrent, nil
	case "end":
		return io.SeekEnd, nil
	default:
		return 0, fmt.Errorf("%w: whence %q", membuf.ErrInvalidArgument, s)
	}
}
