package counting

import (
	"fmt"
	"strings"
)

// ScriptSessionID formats the downstream counting-session identifier.
func ScriptSessionID(year int) string {
	return fmt.Sprintf("INV%dMC", year)
}

// BuildUpdateScript renders the SQL update script consumed by the
// downstream maintenance system. Pure formatting over article code,
// emplacement and the chosen session's recorded count; items without a
// count for that session are skipped. No business logic lives here.
func BuildUpdateScript(items []*Item, session int, year int) (string, error) {
	if err := CheckSession(session); err != nil {
		return "", err
	}

	sessionID := ScriptSessionID(year)

	var b strings.Builder
	b.WriteString(`alter table "COSWIN"."T_COUNT_ITEM" disable all triggers;` + "\n")
	for _, item := range items {
		counting := item.Result(session).Counting
		if counting == nil {
			continue
		}
		fmt.Fprintf(&b,
			"UPDATE T_COUNT_ITEM SET SCIT_Adjustment_Disabled='1', scit_quantity='%s' "+
				"WHERE SCIT_COUNT='%s' AND SCIT_ITEM='%s' AND SCIT_BIN='%s';\n",
			counting.Compact(), sessionID, item.ArticleCode, item.Emplacement,
		)
	}
	b.WriteString(`alter table "COSWIN"."T_COUNT_ITEM" enable all triggers;` + "\n")
	b.WriteString("commit;\n")

	return b.String(), nil
}
