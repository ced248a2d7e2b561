// Package conv provides checked integer conversions.
//
// Sizes arrive as unsigned text from the configuration surface and cursors
// arrive as int64 offsets from io.Seeker callers, while buffers are indexed
// with int. These helpers reject values that do not fit instead of silently
// truncating them.
package conv
