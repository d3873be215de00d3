package logger

import (
	"fmt"
	"io"
	"os"
	"runtime/debug"
	"sync"

	"github.com/sirupsen/logrus"
)

// AsyncHook ghi log bất đồng bộ để không block request handling.
// Entries được buffer vào channel và ghi ra các writers (file, stdout)
// trong một goroutine riêng.
type AsyncHook struct {
	writers    []io.Writer
	entries    chan *logrus.Entry
	wg         sync.WaitGroup
	mu         sync.Mutex
	closed     bool
	bufferSize int
}

// NewAsyncHookWithWriters tạo async hook ghi ra nhiều writers.
// bufferSize <= 0 thì dùng mặc định 1000 entries.
func NewAsyncHookWithWriters(writers []io.Writer, bufferSize int) *AsyncHook {
	if bufferSize <= 0 {
		bufferSize = 1000
	}

	hook := &AsyncHook{
		writers:    writers,
		entries:    make(chan *logrus.Entry, bufferSize),
		bufferSize: bufferSize,
	}

	hook.wg.Add(1)
	go hook.processEntries()

	return hook
}

// Levels trả về các log levels mà hook này xử lý
func (h *AsyncHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

// formatEntry format entry thành bytes bằng formatter của logger.
// Không có formatter thì fallback qua entry.String().
func formatEntry(entry *logrus.Entry) ([]byte, error) {
	if entry.Logger.Formatter != nil {
		return entry.Logger.Formatter.Format(entry)
	}
	line, err := entry.String()
	if err != nil {
		return nil, err
	}
	return []byte(line), nil
}

// Fire đưa entry vào channel, không bao giờ block.
// Channel đầy thì entry bị bỏ qua. Hook đã đóng thì ghi thẳng vào writers.
func (h *AsyncHook) Fire(entry *logrus.Entry) error {
	h.mu.Lock()
	closed := h.closed
	h.mu.Unlock()

	if closed {
		data, err := formatEntry(entry)
		if err != nil {
			return err
		}
		for _, writer := range h.writers {
			_, _ = writer.Write(data)
		}
		return nil
	}

	select {
	case h.entries <- entry:
	default:
		// Channel đầy: bỏ entry. Không log warning ở đây vì sẽ tạo vòng lặp.
	}

	return nil
}

// processEntries chạy trong goroutine riêng, ghi entries ra writers.
// Có recover per-entry: panic trong logger không được làm crash server.
func (h *AsyncHook) processEntries() {
	defer h.wg.Done()

	for entry := range h.entries {
		func() {
			defer func() {
				if r := recover(); r != nil {
					// Không dùng logger ở đây (vòng lặp), ghi thẳng stderr
					fmt.Fprintf(os.Stderr, "[LOGGER PANIC] Logger goroutine panic recovered: %v\n", r)
					debug.PrintStack()
				}
			}()

			// FilterHook đánh dấu entry bị loại bằng field "_filtered"
			if filtered, ok := entry.Data["_filtered"].(bool); ok && filtered {
				return
			}

			// Field "_filtered" chỉ là cờ đánh dấu, không ghi ra log
			writeEntry := entry
			if _, ok := entry.Data["_filtered"]; ok {
				writeEntry = entry.Dup()
				delete(writeEntry.Data, "_filtered")
			}

			data, err := formatEntry(writeEntry)
			if err != nil {
				return
			}

			// Writer chậm chỉ block goroutine này, không block request handling.
			// Một writer lỗi không chặn các writers còn lại.
			for _, writer := range h.writers {
				if _, err := writer.Write(data); err != nil {
					continue
				}
			}
		}()
	}
}

// Close đóng hook và đợi tất cả entries đang chờ được ghi xong
func (h *AsyncHook) Close() error {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil
	}
	h.closed = true
	h.mu.Unlock()

	close(h.entries)
	h.wg.Wait()
	return nil
}
