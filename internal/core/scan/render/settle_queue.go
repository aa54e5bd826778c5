package render

import (
	"sync"

	"github.com/eapache/queue"
)

// settleQueue 单消费者 FIFO 任务队列
//
// 由一个专用 goroutine 按入队顺序依次执行任务，同一组件的结算
// 因此按 begin 顺序生效。
type settleQueue struct {
	mu     sync.Mutex
	cond   *sync.Cond
	items  *queue.Queue // func()
	closed bool
	done   chan struct{}
}

func newSettleQueue() *settleQueue {
	q := &settleQueue{
		items: queue.New(),
		done:  make(chan struct{}),
	}
	q.cond = sync.NewCond(&q.mu)
	go q.run()
	return q
}

// push 入队；队列已关闭时返回 false
func (q *settleQueue) push(task func()) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return false
	}
	q.items.Add(task)
	q.cond.Signal()
	return true
}

// flush 阻塞直到此前入队的任务全部执行完毕
func (q *settleQueue) flush() {
	barrier := make(chan struct{})
	if !q.push(func() { close(barrier) }) {
		<-q.done
		return
	}
	<-barrier
}

// close 停止接收新任务，执行完剩余任务后退出
func (q *settleQueue) close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		<-q.done
		return
	}
	q.closed = true
	q.cond.Signal()
	q.mu.Unlock()
	<-q.done
}

// pending 返回尚未执行的任务数
func (q *settleQueue) pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.items.Length()
}

func (q *settleQueue) run() {
	defer close(q.done)
	for {
		q.mu.Lock()
		for q.items.Length() == 0 && !q.closed {
			q.cond.Wait()
		}
		if q.items.Length() == 0 && q.closed {
			q.mu.Unlock()
			return
		}
		task := q.items.Remove().(func())
		q.mu.Unlock()

		task()
	}
}
