package dict

import (
	"bytes"
	"testing"
	"unicode"

	"github.com/stretchr/testify/require"
)

func loadCharDef(t *testing.T, w *CharacterDefinitionWriter) *CharacterDefinition {
	t.Helper()
	var buf bytes.Buffer
	_, err := w.WriteTo(&buf)
	require.NoError(t, err)
	cd, err := NewCharacterDefinition(buf.Bytes())
	require.NoError(t, err)
	return cd
}

func TestCharacterClasses(t *testing.T) {
	w := NewCharacterDefinitionWriter()
	w.PutTable(unicode.Zs, SPACE)
	w.PutRange('0', '9', NUMERIC)
	w.PutRange('a', 'z', ALPHA)
	w.PutRange(0x3041, 0x309F, HIRAGANA)
	w.PutRange(0x4E00, 0x9FFF, KANJI)
	w.PutRange('一', '一', KANJINUMERIC)
	w.PutFlags(NUMERIC, true, true)
	w.PutFlags(KANJI, false, false)
	w.PutFlags(HIRAGANA, false, true)
	cd := loadCharDef(t, w)

	tests := []struct {
		r      rune
		class  byte
		invoke bool
		group  bool
		kanji  bool
	}{
		{' ', SPACE, false, false, false},
		{0x3000, SPACE, false, false, false},
		{'7', NUMERIC, true, true, false},
		{'q', ALPHA, false, false, false},
		{'Q', DEFAULT, false, false, false},
		{'ひ', HIRAGANA, false, true, false},
		{'漢', KANJI, false, false, true},
		{'一', KANJINUMERIC, false, false, true},
		{0x1F600, DEFAULT, false, false, false},
		{-1, DEFAULT, false, false, false},
	}
	for r := rune(0); r <= 0xFFFF; r++ {
		if int(cd.Class(r)) >= ClassCount {
			t.Fatalf("class of %U out of range", r)
		}
	}
	for _, tt := range tests {
		require.Equalf(t, ClassName(tt.class), ClassName(cd.Class(tt.r)), "class of %U", tt.r)
		require.Equalf(t, tt.invoke, cd.IsInvoke(tt.r), "invoke flag of %U", tt.r)
		require.Equalf(t, tt.group, cd.IsGroup(tt.r), "group flag of %U", tt.r)
		require.Equalf(t, tt.kanji, cd.IsKanji(tt.r), "kanji test of %U", tt.r)
	}
}

func TestCharacterClassNames(t *testing.T) {
	for class := 0; class < ClassCount; class++ {
		c, ok := LookupCharacterClass(ClassName(byte(class)))
		if !ok || int(c) != class {
			t.Fatalf("class %d does not survive a name lookup", class)
		}
	}
	if _, ok := LookupCharacterClass("EMOJI"); ok {
		t.Fatalf("unknown class name should not be found")
	}
	if ClassName(200) != "?" {
		t.Fatalf("out of range class should have no name")
	}
}

func TestCharacterDefinitionRejectsBadClass(t *testing.T) {
	var buf bytes.Buffer
	_, err := NewCharacterDefinitionWriter().WriteTo(&buf)
	require.NoError(t, err)
	data := buf.Bytes()
	headerLen := len(data) - 0x10000 - ClassCount
	data[headerLen+'x'] = byte(ClassCount)
	_, err = NewCharacterDefinition(data)
	require.ErrorIs(t, err, ErrCorruptData)

	_, err = NewCharacterDefinition(data[:headerLen+100])
	require.ErrorIs(t, err, ErrCorruptData)
}

func TestPagedClassMapSharesUniformPages(t *testing.T) {
	dense := make([]byte, 0x10000)
	for i := 0x3041; i <= 0x309F; i++ {
		dense[i] = HIRAGANA
	}
	m := newPagedClassMap(dense)
	if n := m.numPages(); n != 1 {
		t.Fatalf("expected a single mixed page, have %d", n)
	}
	for i := 0; i < 0x10000; i++ {
		if m.class(uint16(i)) != dense[i] {
			t.Fatalf("class of U+%04X differs from dense table", i)
		}
	}
}
