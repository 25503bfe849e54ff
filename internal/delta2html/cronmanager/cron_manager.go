// Пакет для управления фоновыми задачами сервиса по расписанию cron.
//
// Основные возможности:
//   - Добавление и замена задач по имени.
//   - Удаление задач из расписания.
//   - Запуск и остановка диспетчера.
package cronmanager

import (
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/robfig/cron/v3"
)

type CronJobFunc func()

type Job struct {
	Func     CronJobFunc
	Schedule string
}

type CronManager struct {
	dispatcher *cron.Cron
	jobs       map[string]cron.EntryID
	mu         sync.Mutex
}

// NewCronManager создает менеджер задач. Паника в задаче не останавливает
// диспетчер, а повторный запуск задачи пропускается, пока не завершился предыдущий.
func NewCronManager() *CronManager {
	dispatcher := cron.New(
		cron.WithChain(
			cron.Recover(cron.DefaultLogger),
			cron.SkipIfStillRunning(cron.DefaultLogger),
		),
	)

	return &CronManager{
		dispatcher: dispatcher,
		jobs:       make(map[string]cron.EntryID),
	}
}

// AddJob добавляет задачу в расписание. Задача с тем же именем заменяется.
func (cm *CronManager) AddJob(name string, job Job) error {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	id, err := cm.dispatcher.AddFunc(job.Schedule, job.Func)
	if err != nil {
		return fmt.Errorf("add job '%s': %w", name, err)
	}

	if old, exists := cm.jobs[name]; exists {
		cm.dispatcher.Remove(old)
	}
	cm.jobs[name] = id
	slog.Info("Cron job scheduled", "name", name, "schedule", job.Schedule)
	return nil
}

func (cm *CronManager) RemoveJob(name string) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	if entryID, exists := cm.jobs[name]; exists {
		cm.dispatcher.Remove(entryID)
		delete(cm.jobs, name)
	}
}

// Jobs имена задач в расписании.
func (cm *CronManager) Jobs() []string {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	names := make([]string, 0, len(cm.jobs))
	for name := range cm.jobs {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func (cm *CronManager) Start() {
	cm.dispatcher.Start()
}

// Stop останавливает диспетчер и ждет завершения запущенных задач.
func (cm *CronManager) Stop() {
	ctx := cm.dispatcher.Stop()
	<-ctx.Done()
}
