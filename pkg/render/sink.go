package render

import (
	"bytes"
	"sync"
)

// Output sinks are strictly call-scoped: acquired at call start, drained to a
// string, then reset and returned to the pool on every exit path. A sink is
// never shared between concurrent calls.

var sinkPool = sync.Pool{
	New: func() any { return new(bytes.Buffer) },
}

func acquireSink() *bytes.Buffer {
	return sinkPool.Get().(*bytes.Buffer)
}

func releaseSink(buf *bytes.Buffer) {
	buf.Reset()
	sinkPool.Put(buf)
}
