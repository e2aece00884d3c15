// Package stream delivers raw AIS report lines to the tracker.
//
// Sources:
// - ReaderSource: newline-delimited lines from any io.Reader (stdin, files)
// - WebSocketSource: text messages from a websocket feed, one or more lines
//   per message, with optional reconnection and exponential backoff
//
// Both implement tracking.Source. A source returns io.EOF when its stream ends
// cleanly.
package stream
