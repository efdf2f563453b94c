package game

// Frame is a marshaled outbound event.
type Frame []byte

// Conn is the adapter-owned transport endpoint for one connection.
// The engine only ever pushes frames; closing is the adapter's job.
type Conn interface {
	TrySend(Frame) error
}
