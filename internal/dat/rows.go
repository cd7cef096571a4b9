package dat

// Column offsets for the tables talisman consumes. Rows may be wider than
// the highest mapped column; extra columns are ignored.
const (
	baseItemTypeColID             = 0x00
	baseItemTypeColName           = 0x08
	baseItemTypeColVisualIdentity = 0x10
	baseItemTypeMinRow            = 0x18

	uniqueStashLayoutColWords          = 0x00
	uniqueStashLayoutColVisualIdentity = 0x08
	uniqueStashLayoutMinRow            = 0x10

	wordColText = 0x00
	wordMinRow  = 0x08

	itemVisualIdentityColID           = 0x00
	itemVisualIdentityColDDSFile      = 0x08
	itemVisualIdentityColAlternateArt = 0x10
	itemVisualIdentityMinRow          = 0x11
)

// BaseItemType is a row of the BaseItemTypes table.
type BaseItemType struct {
	ID             String
	Name           String
	VisualIdentity uint64
}

// UniqueStashLayout is a row of the UniqueStashLayout table. Words and
// VisualIdentity are unchecked foreign keys; neither is guaranteed to
// resolve.
type UniqueStashLayout struct {
	Words          uint64
	VisualIdentity uint64
}

// Word is a row of the Words table.
type Word struct {
	Text String
}

// ItemVisualIdentity is a row of the ItemVisualIdentity table.
type ItemVisualIdentity struct {
	ID             String
	DDSFile        String
	IsAlternateArt bool
}

// BaseItemTypes interprets the table as BaseItemTypes rows.
func (t *Table) BaseItemTypes() ([]BaseItemType, error) {
	if err := t.checkRowSize("BaseItemTypes", baseItemTypeMinRow); err != nil {
		return nil, err
	}
	rows := make([]BaseItemType, t.rowCount)
	for i := range rows {
		row := t.row(i)
		rows[i] = BaseItemType{
			ID:             t.stringAt(row, baseItemTypeColID),
			Name:           t.stringAt(row, baseItemTypeColName),
			VisualIdentity: t.u64(row, baseItemTypeColVisualIdentity),
		}
	}
	return rows, nil
}

// UniqueStashLayouts interprets the table as UniqueStashLayout rows.
func (t *Table) UniqueStashLayouts() ([]UniqueStashLayout, error) {
	if err := t.checkRowSize("UniqueStashLayout", uniqueStashLayoutMinRow); err != nil {
		return nil, err
	}
	rows := make([]UniqueStashLayout, t.rowCount)
	for i := range rows {
		row := t.row(i)
		rows[i] = UniqueStashLayout{
			Words:          t.u64(row, uniqueStashLayoutColWords),
			VisualIdentity: t.u64(row, uniqueStashLayoutColVisualIdentity),
		}
	}
	return rows, nil
}

// Words interprets the table as Words rows.
func (t *Table) Words() ([]Word, error) {
	if err := t.checkRowSize("Words", wordMinRow); err != nil {
		return nil, err
	}
	rows := make([]Word, t.rowCount)
	for i := range rows {
		rows[i] = Word{Text: t.stringAt(t.row(i), wordColText)}
	}
	return rows, nil
}

// ItemVisualIdentities interprets the table as ItemVisualIdentity rows.
func (t *Table) ItemVisualIdentities() ([]ItemVisualIdentity, error) {
	if err := t.checkRowSize("ItemVisualIdentity", itemVisualIdentityMinRow); err != nil {
		return nil, err
	}
	rows := make([]ItemVisualIdentity, t.rowCount)
	for i := range rows {
		row := t.row(i)
		rows[i] = ItemVisualIdentity{
			ID:             t.stringAt(row, itemVisualIdentityColID),
			DDSFile:        t.stringAt(row, itemVisualIdentityColDDSFile),
			IsAlternateArt: t.boolean(row, itemVisualIdentityColAlternateArt),
		}
	}
	return rows, nil
}
