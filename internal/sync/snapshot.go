package sync

import (
	"bufio"
	"bytes"
	"encoding/json"
	"os"

	"github.com/mcmeskajr-prog/trackall/filesystem"
	"github.com/mcmeskajr-prog/trackall/log"
	"github.com/mcmeskajr-prog/trackall/where"
)

// Save writes the pending tasks to the snapshot file as JSON lines, or removes the file when nothing is pending.
func (q *Queue) Save() error {
	path := where.SyncQueue()
	tasks := q.Pending()

	if len(tasks) == 0 {
		err := filesystem.API().Remove(path)
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	for _, task := range tasks {
		if err := encoder.Encode(task); err != nil {
			return err
		}
	}

	return filesystem.WriteAtomic(path, buf.Bytes())
}

// Load enqueues the tasks of a previous snapshot. Unreadable lines are skipped.
// Tasks enqueued since startup win over the snapshot's.
func (q *Queue) Load() error {
	data, err := filesystem.API().ReadFile(where.SyncQueue())
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}

	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	loaded := 0
	for scanner.Scan() {
		var task Task
		if err := json.Unmarshal(scanner.Bytes(), &task); err != nil {
			log.WithError(err).Warnf("skipping unreadable queued write")
			continue
		}

		if q.restore(task) {
			loaded++
		}
	}

	if loaded > 0 {
		log.Infof("restored %d queued writes", loaded)
		q.signal()
	}
	return scanner.Err()
}

func (q *Queue) restore(task Task) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	slot := task.slot()
	if existing, ok := q.pending[slot]; ok && !existing.restored {
		return false
	}

	q.seq++
	task.seq = q.seq
	task.restored = true
	q.pending[slot] = task
	return true
}
