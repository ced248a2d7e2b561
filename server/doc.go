// Package server exposes a membuf pool over HTTP.
//
// The configuration attributes are mounted under /sys/membuf and accept the
// same text the ConfigPort does:
//
//	GET  /sys/membuf/count
//	PUT  /sys/membuf/count          body "3\n"
//	GET  /sys/membuf/default_size
//	GET  /sys/membuf/stats
//	GET  /sys/membuf/:id/size
//	PUT  /sys/membuf/:id/size       body "10\n"
//
// Byte-stream access goes through sessions. A session wraps one open handle
// and expires after an idle period, which closes the handle:
//
//	POST   /dev/:id/open            -> 201 {"session": "...", ...}
//	GET    /sessions/:sid?len=N     read up to N bytes at the cursor
//	PUT    /sessions/:sid           write the request body at the cursor
//	POST   /sessions/:sid/seek?offset=N&whence=start|current|end
//	DELETE /sessions/:sid
//
// GET /metrics serves the Prometheus registry given to New.
package server
