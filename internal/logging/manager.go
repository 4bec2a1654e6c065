package logging

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"sync"
)

// Имена компонентов аддонов
const (
	ComponentCapacitor    = "capacitor"
	ComponentReplanting   = "replanting"
	ComponentProductivity = "productivity"
	ComponentToolSwap     = "toolswap"
	ComponentServer       = "server"
)

// LoggerManager раздаёт логгеры компонентов: по одному экземпляру на имя.
// По умолчанию логгеры пишут только в консоль; EnableFiles(true) включает
// файлы logs/<component>_<ts>.log для логгеров, созданных после вызова.
type LoggerManager struct {
	mu         sync.Mutex
	loggers    map[string]*Logger
	fileBacked bool
	level      LogLevel
}

var (
	globalManager *LoggerManager
	managerOnce   sync.Once
)

// GetLoggerManager возвращает глобальный менеджер логгеров
func GetLoggerManager() *LoggerManager {
	managerOnce.Do(func() {
		globalManager = &LoggerManager{loggers: make(map[string]*Logger), level: INFO}
	})
	return globalManager
}

// EnableFiles включает запись логов компонентов в файлы
func (lm *LoggerManager) EnableFiles(enabled bool) {
	lm.mu.Lock()
	lm.fileBacked = enabled
	lm.mu.Unlock()
}

// SetConsoleLevel задаёт консольный уровень для новых и уже созданных логгеров
func (lm *LoggerManager) SetConsoleLevel(level LogLevel) {
	lm.mu.Lock()
	defer lm.mu.Unlock()
	lm.level = level
	for _, l := range lm.loggers {
		l.setLevels(level, l.fileLevel())
	}
}

// GetLogger возвращает логгер компонента, создавая его при первом запросе
func (lm *LoggerManager) GetLogger(component string) (*Logger, error) {
	lm.mu.Lock()
	defer lm.mu.Unlock()

	if l, ok := lm.loggers[component]; ok {
		return l, nil
	}

	l := NewConsoleLogger(component, os.Stdout, lm.level)
	if lm.fileBacked {
		fl, err := NewLogger(component)
		if err != nil {
			return nil, fmt.Errorf("logger %s: %w", component, err)
		}
		fl.setLevels(lm.level, TRACE)
		l = fl
	}
	lm.loggers[component] = l
	return l, nil
}

// MustGetLogger возвращает логгер; при ошибке создания файла - консольный
func (lm *LoggerManager) MustGetLogger(component string) *Logger {
	l, err := lm.GetLogger(component)
	if err != nil {
		fallback := NewConsoleLogger(component, os.Stdout, INFO)
		fallback.Warn("файл логов недоступен, пишу только в консоль: %v", err)
		return fallback
	}
	return l
}

// CloseAll закрывает все логгеры и забывает их
func (lm *LoggerManager) CloseAll() error {
	lm.mu.Lock()
	defer lm.mu.Unlock()

	var errs []error
	for name, l := range lm.loggers {
		if err := l.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s: %w", name, err))
		}
	}
	lm.loggers = make(map[string]*Logger)
	return errors.Join(errs...)
}

// ListComponents возвращает отсортированные имена созданных логгеров
func (lm *LoggerManager) ListComponents() []string {
	lm.mu.Lock()
	defer lm.mu.Unlock()

	names := make([]string, 0, len(lm.loggers))
	for name := range lm.loggers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SetLogLevel меняет уровни одного компонента
func (lm *LoggerManager) SetLogLevel(component string, consoleLevel, fileLevel LogLevel) error {
	lm.mu.Lock()
	l, ok := lm.loggers[component]
	lm.mu.Unlock()
	if !ok {
		return fmt.Errorf("logger for component %s not found", component)
	}
	l.setLevels(consoleLevel, fileLevel)
	return nil
}

// GetComponentLogger - логгер компонента из глобального менеджера
func GetComponentLogger(component string) *Logger {
	return GetLoggerManager().MustGetLogger(component)
}

func GetCapacitorLogger() *Logger    { return GetComponentLogger(ComponentCapacitor) }
func GetReplantingLogger() *Logger   { return GetComponentLogger(ComponentReplanting) }
func GetProductivityLogger() *Logger { return GetComponentLogger(ComponentProductivity) }
func GetToolSwapLogger() *Logger     { return GetComponentLogger(ComponentToolSwap) }
func GetServerLogger() *Logger       { return GetComponentLogger(ComponentServer) }
