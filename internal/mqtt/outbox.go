package mqtt

// outboxMsg stores a serialized MQTT message for replay after reconnection.
type outboxMsg struct {
	topic    string
	payload  []byte
	qos      byte
	retained bool
}

// defaultOutboxCapacity bounds how many messages accumulate during an
// outage. At normal event rates this covers hours of disconnection.
const defaultOutboxCapacity = 64

// outbox is a fixed-capacity FIFO that stores messages while disconnected.
// When full, the oldest message is dropped. Not safe for concurrent use;
// the caller must synchronize.
type outbox struct {
	buf      []outboxMsg
	capacity int
	head     int // next write position
	count    int
	dropped  int // messages overwritten since the last drain
}

func newOutbox(capacity int) *outbox {
	return &outbox{
		buf:      make([]outboxMsg, capacity),
		capacity: capacity,
	}
}

func (o *outbox) push(msg outboxMsg) {
	if o.count == o.capacity {
		// Overwrite oldest: head is already pointing at it.
		o.buf[o.head] = msg
		o.head = (o.head + 1) % o.capacity
		o.dropped++
		return
	}
	o.buf[o.head] = msg
	o.head = (o.head + 1) % o.capacity
	o.count++
}

// drain returns all buffered messages oldest-first plus the number dropped
// to overflow, and empties the outbox.
func (o *outbox) drain() ([]outboxMsg, int) {
	dropped := o.dropped
	o.dropped = 0

	if o.count == 0 {
		return nil, dropped
	}

	result := make([]outboxMsg, o.count)
	start := (o.head - o.count + o.capacity) % o.capacity
	for i := 0; i < o.count; i++ {
		result[i] = o.buf[(start+i)%o.capacity]
	}

	o.count = 0
	o.head = 0
	return result, dropped
}

func (o *outbox) len() int {
	return o.count
}
