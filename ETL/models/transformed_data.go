package models

// ExtractedData содержит очищенные данные обоих периодов
type ExtractedData struct {
	Current  []ClientRecord
	Previous []ClientRecord

	// Количество строк, отброшенных нормализатором
	DroppedCurrent  int
	DroppedPrevious int
}

// TransformedData содержит все таблицы отчёта для загрузки
type TransformedData struct {
	// Таблицы вариантов ключа в порядке AllVariants
	Variants []VariantDataset

	// Своды по менеджерам
	ManagerSummary   ManagerSummary
	ManagerSummaryTB ManagerSummary

	// Выгрузка СПОД
	Spod []SpodExportRow
}

// Variant возвращает таблицу варианта или nil
func (d *TransformedData) Variant(variant KeyVariant) *VariantDataset {
	for i := range d.Variants {
		if d.Variants[i].Variant == variant {
			return &d.Variants[i]
		}
	}
	return nil
}
