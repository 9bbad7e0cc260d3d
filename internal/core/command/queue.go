package command

// Queue is a FIFO of commands. Many producers push during a frame; the world
// drains it once, in push order.
type Queue struct {
	items []Command
	head  int
}

func NewQueue() *Queue {
	return &Queue{items: make([]Command, 0, 64)}
}

func (q *Queue) Push(c Command) {
	q.items = append(q.items, c)
}

// Pop removes and returns the oldest command. Popping an empty queue is a
// programming error.
func (q *Queue) Pop() Command {
	if q.IsEmpty() {
		panic("command: pop on empty queue")
	}
	c := q.items[q.head]
	q.items[q.head] = Command{}
	q.head++
	if q.head == len(q.items) {
		q.items = q.items[:0]
		q.head = 0
	}
	return c
}

func (q *Queue) IsEmpty() bool {
	return q.head == len(q.items)
}

func (q *Queue) Len() int {
	return len(q.items) - q.head
}
