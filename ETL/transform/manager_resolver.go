package transform

import (
	"github.com/LilVoxy/spod_rost/ETL/config"
	"github.com/LilVoxy/spod_rost/ETL/extractors"
	"github.com/LilVoxy/spod_rost/ETL/models"
	"github.com/LilVoxy/spod_rost/ETL/utils"
	"github.com/shopspring/decimal"
)

// ManagerResolver определяет менеджера ключа за период и актуального менеджера по двум периодам
type ManagerResolver struct {
	mode     string
	defaults models.Manager
	logger   *utils.ETLLogger
}

// NewManagerResolver создает новый экземпляр ManagerResolver.
// Табельный номер по умолчанию форматируется по правилам ТН.
func NewManagerResolver(cfg config.Config, logger *utils.ETLLogger) *ManagerResolver {
	return &ManagerResolver{
		mode: cfg.Normalization.ManagerSelection,
		defaults: models.Manager{
			Name: cfg.Defaults.ManagerName,
			ID: extractors.FormatIdentifier(cfg.Defaults.ManagerTN,
				cfg.Identifiers.TNTotalLength, cfg.Identifiers.TNFillChar),
		},
		logger: logger.Named("ManagerResolver"),
	}
}

// Default возвращает менеджера по умолчанию
func (r *ManagerResolver) Default() models.Manager {
	return r.defaults
}

// SelectBestManager выбирает для каждого ключа менеджера с максимальным фактом.
// При равенстве побеждает первая строка в исходном порядке. Строки без менеджера не участвуют.
func (r *ManagerResolver) SelectBestManager(records []models.ClientRecord, variant models.KeyVariant) []models.ResolvedManager {
	var result []models.ResolvedManager
	if r.mode == config.SelectionTotal {
		result = selectByTotal(records, variant)
	} else {
		result = selectByRow(records, variant)
	}
	r.logger.Debug("%s: выбраны менеджеры для %d ключей", variant, len(result))
	return result
}

// selectByRow - менеджер строки с максимальным фактом
func selectByRow(records []models.ClientRecord, variant models.KeyVariant) []models.ResolvedManager {
	type candidate struct {
		key     models.GroupKey
		manager models.Manager
		fact    decimal.Decimal
	}

	index := make(map[string]int)
	candidates := make([]candidate, 0)
	for _, record := range records {
		if !record.HasManager() {
			continue
		}
		key := variant.KeyOf(record)
		hash := key.Hash()
		manager := models.Manager{Name: record.ManagerName, ID: record.ManagerID}

		i, ok := index[hash]
		if !ok {
			index[hash] = len(candidates)
			candidates = append(candidates, candidate{key: key, manager: manager, fact: record.Fact})
			continue
		}
		// Строгое сравнение сохраняет первую строку при равенстве
		if record.Fact.GreaterThan(candidates[i].fact) {
			candidates[i].manager = manager
			candidates[i].fact = record.Fact
		}
	}

	result := make([]models.ResolvedManager, 0, len(candidates))
	for _, c := range candidates {
		result = append(result, models.ResolvedManager{Key: c.key, Manager: c.manager})
	}
	return result
}

// selectByTotal - менеджер с максимальной суммой факта внутри ключа
func selectByTotal(records []models.ClientRecord, variant models.KeyVariant) []models.ResolvedManager {
	type managerTotal struct {
		manager models.Manager
		total   decimal.Decimal
	}
	type group struct {
		key      models.GroupKey
		managers []managerTotal
		index    map[models.Manager]int
	}

	index := make(map[string]int)
	groups := make([]*group, 0)
	for _, record := range records {
		if !record.HasManager() {
			continue
		}
		key := variant.KeyOf(record)
		hash := key.Hash()
		gi, ok := index[hash]
		if !ok {
			gi = len(groups)
			index[hash] = gi
			groups = append(groups, &group{key: key, index: make(map[models.Manager]int)})
		}
		g := groups[gi]

		manager := models.Manager{Name: record.ManagerName, ID: record.ManagerID}
		mi, ok := g.index[manager]
		if !ok {
			mi = len(g.managers)
			g.index[manager] = mi
			g.managers = append(g.managers, managerTotal{manager: manager, total: decimal.Zero})
		}
		g.managers[mi].total = g.managers[mi].total.Add(record.Fact)
	}

	result := make([]models.ResolvedManager, 0, len(groups))
	for _, g := range groups {
		best := g.managers[0]
		for _, m := range g.managers[1:] {
			if m.total.GreaterThan(best.total) {
				best = m
			}
		}
		result = append(result, models.ResolvedManager{Key: g.key, Manager: best.manager})
	}
	return result
}

// BuildLatestManager объединяет выборы двух периодов: приоритет у T-0, затем T-1,
// затем значение по умолчанию. Возвращает ровно одну строку на каждый ключ объединения.
func (r *ManagerResolver) BuildLatestManager(current, previous []models.ResolvedManager) []models.LatestManager {
	currentByKey := make(map[string]models.Manager, len(current))
	previousByKey := make(map[string]models.Manager, len(previous))
	keys := make([]models.GroupKey, 0, len(current)+len(previous))
	seen := make(map[string]bool, len(current)+len(previous))

	for _, selection := range current {
		hash := selection.Key.Hash()
		currentByKey[hash] = selection.Manager
		if !seen[hash] {
			seen[hash] = true
			keys = append(keys, selection.Key)
		}
	}
	for _, selection := range previous {
		hash := selection.Key.Hash()
		previousByKey[hash] = selection.Manager
		if !seen[hash] {
			seen[hash] = true
			keys = append(keys, selection.Key)
		}
	}

	result := make([]models.LatestManager, 0, len(keys))
	for _, key := range keys {
		hash := key.Hash()
		result = append(result, models.LatestManager{
			Key:     key,
			Manager: r.latest(currentByKey[hash], previousByKey[hash]),
		})
	}

	r.logger.Debug("определены актуальные менеджеры для %d ключей", len(result))
	return result
}

// latest выбирает менеджера целиком: T-0, если он указан, иначе T-1, иначе значение по умолчанию.
// Недостающее поле берётся из T-1 только для того же менеджера, остальное из значения по умолчанию.
func (r *ManagerResolver) latest(current, previous models.Manager) models.Manager {
	chosen := current
	if chosen.IsZero() {
		chosen = previous
	} else if sameManager(current, previous) {
		chosen.Name = firstNonEmpty(current.Name, previous.Name)
		chosen.ID = firstNonEmpty(current.ID, previous.ID)
	}
	return models.Manager{
		Name: firstNonEmpty(chosen.Name, r.defaults.Name),
		ID:   firstNonEmpty(chosen.ID, r.defaults.ID),
	}
}

// sameManager сообщает, что у двух выборов совпадает табельный номер или имя
func sameManager(a, b models.Manager) bool {
	return (a.ID != "" && a.ID == b.ID) || (a.Name != "" && a.Name == b.Name)
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if value != "" {
			return value
		}
	}
	return ""
}
