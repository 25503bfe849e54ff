package delta2html

import (
	"log/slog"
	"os"

	"github.com/aisa-it/delta2html/internal/delta2html/cronmanager"
	"github.com/aisa-it/delta2html/internal/delta2html/rules"
)

const scriptReloadJob = "render_script_reload"

// NewCronManager задачи сервиса по расписанию. Без скрипта отрисовки или
// расписания возвращает nil.
func (s *Services) NewCronManager() (*cronmanager.CronManager, error) {
	if s.cfg.CustomRenderScriptPath == "" || s.cfg.ScriptReloadSchedule == "" {
		return nil, nil
	}

	cm := cronmanager.NewCronManager()
	if err := cm.AddJob(scriptReloadJob, cronmanager.Job{
		Func:     s.ReloadScript,
		Schedule: s.cfg.ScriptReloadSchedule,
	}); err != nil {
		return nil, err
	}
	return cm, nil
}

// ReloadScript перечитывает скрипт отрисовки, если файл изменился.
// Скрипт с ошибками не заменяет работающий.
func (s *Services) ReloadScript() {
	s.scriptMu.Lock()
	defer s.scriptMu.Unlock()

	path := s.cfg.CustomRenderScriptPath
	info, err := os.Stat(path)
	if err != nil {
		s.metrics.scriptReloads.WithLabelValues("fail").Inc()
		slog.Error("Stat custom render script", "path", path, "err", err)
		return
	}
	if !info.ModTime().After(s.scriptMod) {
		return
	}

	scripts, err := rules.LoadRenderer(path, s.cfg.LuaTimeout())
	if err != nil {
		s.metrics.scriptReloads.WithLabelValues("fail").Inc()
		slog.Error("Reload custom render script", "path", path, "err", err)
		return
	}

	s.scripts.Store(scripts)
	s.scriptMod = info.ModTime()
	s.metrics.scriptReloads.WithLabelValues("ok").Inc()
	slog.Info("Custom render script reloaded", "path", path)
}
