// SPDX-FileCopyrightText: 2022 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package eloop is a small epoll based readiness loop. All callbacks run on
// the goroutine calling Dispatch or Run; other goroutines hand work to it
// with Post and Invoke.
package eloop

import (
	"sync"
	"time"

	"github.com/linuxdeepin/go-lib/log"
	"golang.org/x/sys/unix"
	"golang.org/x/xerrors"
)

var logger = log.NewLogger("kmsvideo/eloop")

type Mask uint32

const (
	Readable Mask = 1 << iota
	Writeable
	Hangup
	Error
)

func (m Mask) String() string {
	var s string
	add := func(name string) {
		if s != "" {
			s += "|"
		}
		s += name
	}
	if m&Readable != 0 {
		add("readable")
	}
	if m&Writeable != 0 {
		add("writeable")
	}
	if m&Hangup != 0 {
		add("hangup")
	}
	if m&Error != 0 {
		add("error")
	}
	if s == "" {
		return "none"
	}
	return s
}

type FdCallback func(mask Mask)

// Fd is one registration returned by AddFd.
type Fd struct {
	id   int32
	fd   int
	mask Mask
	cb   FdCallback
}

func (f *Fd) Fd() int {
	return f.fd
}

type Loop struct {
	epfd   int
	wakefd int
	nextID int32
	fds    map[int32]*Fd
	exit   bool

	mu    sync.Mutex
	queue []func()
}

const wakeID = -1

func New() (*Loop, error) {
	epfd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, xerrors.Errorf("epoll_create1: %w", err)
	}
	wakefd, err := unix.Eventfd(0, unix.EFD_CLOEXEC|unix.EFD_NONBLOCK)
	if err != nil {
		unix.Close(epfd)
		return nil, xerrors.Errorf("eventfd: %w", err)
	}
	ev := unix.EpollEvent{Events: unix.EPOLLIN, Fd: wakeID}
	err = unix.EpollCtl(epfd, unix.EPOLL_CTL_ADD, wakefd, &ev)
	if err != nil {
		unix.Close(wakefd)
		unix.Close(epfd)
		return nil, xerrors.Errorf("add wakeup fd: %w", err)
	}

	return &Loop{
		epfd:   epfd,
		wakefd: wakefd,
		fds:    make(map[int32]*Fd),
	}, nil
}

func (l *Loop) Close() error {
	for _, f := range l.fds {
		l.RemoveFd(f)
	}
	unix.Close(l.wakefd)
	return unix.Close(l.epfd)
}

func toEpoll(mask Mask) uint32 {
	var events uint32
	if mask&Readable != 0 {
		events |= unix.EPOLLIN
	}
	if mask&Writeable != 0 {
		events |= unix.EPOLLOUT
	}
	return events
}

func fromEpoll(events uint32) Mask {
	var mask Mask
	if events&unix.EPOLLIN != 0 {
		mask |= Readable
	}
	if events&unix.EPOLLOUT != 0 {
		mask |= Writeable
	}
	if events&unix.EPOLLHUP != 0 {
		mask |= Hangup
	}
	if events&unix.EPOLLERR != 0 {
		mask |= Error
	}
	return mask
}

// AddFd watches fd for the conditions in mask. Hangup and Error are always
// reported.
func (l *Loop) AddFd(fd int, mask Mask, cb FdCallback) (*Fd, error) {
	if fd < 0 || cb == nil {
		return nil, xerrors.Errorf("add fd %d: %w", fd, unix.EINVAL)
	}

	l.nextID++
	f := &Fd{
		id:   l.nextID,
		fd:   fd,
		mask: mask,
		cb:   cb,
	}
	ev := unix.EpollEvent{Events: toEpoll(mask), Fd: f.id}
	err := unix.EpollCtl(l.epfd, unix.EPOLL_CTL_ADD, fd, &ev)
	if err != nil {
		return nil, xerrors.Errorf("epoll add fd %d: %w", fd, err)
	}
	l.fds[f.id] = f
	return f, nil
}

// RemoveFd stops watching f. Removing an fd from inside its own callback
// is allowed.
func (l *Loop) RemoveFd(f *Fd) {
	if f == nil {
		return
	}
	if _, ok := l.fds[f.id]; !ok {
		return
	}
	delete(l.fds, f.id)
	err := unix.EpollCtl(l.epfd, unix.EPOLL_CTL_DEL, f.fd, nil)
	if err != nil && err != unix.EBADF && err != unix.ENOENT {
		logger.Warningf("failed to remove fd %d from epoll: %v", f.fd, err)
	}
}

// Post queues fn to run on the loop goroutine. Safe from any goroutine.
func (l *Loop) Post(fn func()) {
	l.mu.Lock()
	l.queue = append(l.queue, fn)
	l.mu.Unlock()

	var buf [8]byte
	buf[0] = 1
	_, err := unix.Write(l.wakefd, buf[:])
	if err != nil && err != unix.EAGAIN {
		logger.Warning("failed to wake up loop:", err)
	}
}

// Invoke runs fn on the loop goroutine and waits for it to return. It must
// not be called from the loop goroutine itself.
func (l *Loop) Invoke(fn func()) {
	done := make(chan struct{})
	l.Post(func() {
		defer close(done)
		fn()
	})
	<-done
}

// Exit makes Run return after the current iteration.
func (l *Loop) Exit() {
	l.Post(func() {
		l.exit = true
	})
}

func (l *Loop) drainWakeup() {
	var buf [8]byte
	for {
		_, err := unix.Read(l.wakefd, buf[:])
		if err != nil {
			return
		}
	}
}

func (l *Loop) runQueue() {
	l.mu.Lock()
	queue := l.queue
	l.queue = nil
	l.mu.Unlock()

	for _, fn := range queue {
		fn()
	}
}

// Dispatch waits up to timeout for readiness and runs the callbacks. A
// negative timeout waits forever.
func (l *Loop) Dispatch(timeout time.Duration) error {
	msec := -1
	if timeout >= 0 {
		msec = int(timeout / time.Millisecond)
	}

	events := make([]unix.EpollEvent, 32)
	n, err := unix.EpollWait(l.epfd, events, msec)
	if err != nil {
		if err == unix.EINTR {
			return nil
		}
		return xerrors.Errorf("epoll_wait: %w", err)
	}

	for i := 0; i < n; i++ {
		ev := events[i]
		if ev.Fd == wakeID {
			l.drainWakeup()
			continue
		}
		// may have been removed by an earlier callback of this batch
		f, ok := l.fds[ev.Fd]
		if !ok {
			continue
		}
		f.cb(fromEpoll(ev.Events))
	}

	l.runQueue()
	return nil
}

func (l *Loop) Run() error {
	l.exit = false
	for !l.exit {
		err := l.Dispatch(-1)
		if err != nil {
			return err
		}
	}
	return nil
}

func SetLogLevel(level log.Priority) {
	logger.SetLogLevel(level)
}
