package block

import (
	"sort"
	"strings"
	"sync"
)

// MaterialID - непрозрачный идентификатор материала ("minecraft:oak_log").
type MaterialID string

// None - пустой идентификатор (нет предмета в руке, нет материала).
const None MaterialID = ""

// Namespace - пространство имён ванильных материалов
const Namespace = "minecraft:"

// Material описывает зарегистрированный материал
type Material struct {
	ID MaterialID
	// DisplayKey - ключ текста для локализации ("oak_sapling")
	DisplayKey string
	// GrowthState - имя состояния роста ("growth"/"age"), пусто если материал не растёт
	GrowthState string
}

var (
	registryMu sync.RWMutex
	registry   = make(map[MaterialID]Material)
)

// Register добавляет материал в регистр
func Register(m Material) {
	if m.DisplayKey == "" {
		m.DisplayKey = m.ID.ShortName()
	}
	registryMu.Lock()
	registry[m.ID] = m
	registryMu.Unlock()
}

// Get возвращает описание материала
func Get(id MaterialID) (Material, bool) {
	registryMu.RLock()
	m, exists := registry[id]
	registryMu.RUnlock()
	return m, exists
}

// IsKnown проверяет, зарегистрирован ли материал
func IsKnown(id MaterialID) bool {
	_, exists := Get(id)
	return exists
}

// All возвращает все зарегистрированные материалы, отсортированные по ID
func All() []Material {
	registryMu.RLock()
	out := make([]Material, 0, len(registry))
	for _, m := range registry {
		out = append(out, m)
	}
	registryMu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// ShortName возвращает идентификатор без пространства имён
func (id MaterialID) ShortName() string {
	return strings.TrimPrefix(string(id), Namespace)
}

// DisplayKey возвращает ключ локализации материала
func (id MaterialID) DisplayKey() string {
	if m, ok := Get(id); ok {
		return m.DisplayKey
	}
	return id.ShortName()
}

func (id MaterialID) String() string { return string(id) }
