package duckengine

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/metrico/deltamaint/delta"
)

// Merge stages the source as a parquet file, loads it into a session-local
// table and applies the spec as DELETE / UPDATE / INSERT statements inside
// one transaction. Matches are fixed against the pre-merge contents; the
// manifest is rewritten after commit.
func (t *Table) Merge(spec delta.MergeSpec) error {
	t.mtx.Lock()
	defer t.mtx.Unlock()
	if spec.Source == nil {
		return fmt.Errorf("merge source is required")
	}
	if len(spec.On) == 0 {
		return fmt.Errorf("merge requires join columns")
	}
	for _, on := range spec.On {
		if _, ok := spec.Source.Column(on[0]); !ok {
			return fmt.Errorf("merge source has no column %q", on[0])
		}
		if _, ok := t.def.columnType(on[1]); !ok {
			return fmt.Errorf("merge target has no column %q", on[1])
		}
	}

	srcPath, err := stageParquet(spec.Source, t.tmpPath)
	if err != nil {
		return err
	}
	defer os.Remove(srcPath)

	tx, err := t.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	tq := quoteIdent(t.def.Name)
	suffix := strings.ReplaceAll(uuid.New().String(), "-", "")
	st := quoteIdent("__src_" + suffix)
	mt := quoteIdent("__match_" + suffix)

	// temp tables are session local, the transaction pins one connection
	_, err = tx.Exec(fmt.Sprintf(
		`CREATE TEMP TABLE %s AS SELECT *, row_number() OVER () - 1 AS __rn FROM read_parquet('%s')`,
		st, escapeString(srcPath)))
	if err != nil {
		return fmt.Errorf("loading merge source: %w", err)
	}

	onParts := make([]string, len(spec.On))
	for i, on := range spec.On {
		onParts[i] = fmt.Sprintf("s.%s = %s.%s", quoteIdent(on[0]), tq, quoteIdent(on[1]))
	}
	var tcondArgs []any
	tcond, err := renderPred(spec.TargetCond, tq, &tcondArgs)
	if err != nil {
		return err
	}
	_, err = tx.Exec(fmt.Sprintf(
		`CREATE TEMP TABLE %s AS SELECT %s.rowid AS trid, s.__rn AS srn FROM %s, %s s WHERE %s AND %s`,
		mt, tq, tq, st, strings.Join(onParts, " AND "), tcond), tcondArgs...)
	if err != nil {
		return fmt.Errorf("matching merge source: %w", err)
	}

	hasUpdate := false
	for _, a := range spec.Matched {
		if !a.Delete {
			hasUpdate = true
		}
	}
	if hasUpdate {
		var n int64
		err = tx.QueryRow(fmt.Sprintf(
			`SELECT count(*) FROM (SELECT trid FROM %s GROUP BY trid HAVING count(*) > 1)`, mt)).Scan(&n)
		if err != nil {
			return err
		}
		if n > 0 {
			return fmt.Errorf("cannot perform merge: multiple source rows matched the same target row")
		}
	}

	var changed int64
	var earlier []string
	for _, a := range spec.Matched {
		cond := differsCond(a.DiffersOn, tq)
		guards := []string{fmt.Sprintf("m.trid = %s.rowid", tq), cond}
		for _, e := range earlier {
			guards = append(guards, "NOT "+e)
		}
		earlier = append(earlier, cond)

		if a.Delete {
			res, err := tx.Exec(fmt.Sprintf(
				`DELETE FROM %s WHERE EXISTS (SELECT 1 FROM %s m JOIN %s s ON s.__rn = m.srn WHERE %s)`,
				tq, mt, st, strings.Join(guards, " AND ")))
			if err != nil {
				return fmt.Errorf("merge delete: %w", err)
			}
			n, _ := res.RowsAffected()
			changed += n
			continue
		}

		cols := make([]string, 0, len(a.Set))
		for c := range a.Set {
			cols = append(cols, c)
		}
		sort.Strings(cols)
		var args []any
		assigns := make([]string, 0, len(cols))
		for _, c := range cols {
			v := a.Set[c]
			if v.IsSrc() {
				assigns = append(assigns, fmt.Sprintf("%s = s.%s", quoteIdent(c), quoteIdent(v.FromSource)))
				continue
			}
			assigns = append(assigns, fmt.Sprintf("%s = ?", quoteIdent(c)))
			args = append(args, v.Literal)
		}
		res, err := tx.Exec(fmt.Sprintf(
			`UPDATE %s SET %s FROM %s m JOIN %s s ON s.__rn = m.srn WHERE %s`,
			tq, strings.Join(assigns, ", "), mt, st, strings.Join(guards, " AND ")), args...)
		if err != nil {
			return fmt.Errorf("merge update: %w", err)
		}
		n, _ := res.RowsAffected()
		changed += n
	}

	if spec.NotMatched != nil {
		cols := make([]string, 0, len(spec.NotMatched.Values))
		for c := range spec.NotMatched.Values {
			cols = append(cols, c)
		}
		sort.Strings(cols)
		var args []any
		quoted := make([]string, 0, len(cols))
		exprs := make([]string, 0, len(cols))
		for _, c := range cols {
			quoted = append(quoted, quoteIdent(c))
			v := spec.NotMatched.Values[c]
			if v.IsSrc() {
				exprs = append(exprs, "s."+quoteIdent(v.FromSource))
				continue
			}
			exprs = append(exprs, "?")
			args = append(args, v.Literal)
		}
		res, err := tx.Exec(fmt.Sprintf(
			`INSERT INTO %s (%s) SELECT %s FROM %s s WHERE s.__rn NOT IN (SELECT srn FROM %s) ORDER BY s.__rn`,
			tq, strings.Join(quoted, ", "), strings.Join(exprs, ", "), st, mt), args...)
		if err != nil {
			return fmt.Errorf("merge insert: %w", err)
		}
		n, _ := res.RowsAffected()
		changed += n
	}

	// temp tables live for the connection, not the transaction
	for _, tmp := range []string{mt, st} {
		if _, err := tx.Exec(`DROP TABLE ` + tmp); err != nil {
			return err
		}
	}

	if changed == 0 {
		// nothing mutated, no new version is committed
		return nil
	}
	versions := quoteIdent(t.def.Name + "_versions")
	_, err = tx.Exec(fmt.Sprintf(
		`INSERT INTO %s SELECT coalesce(max(version), 0) + 1, now() FROM %s`, versions, versions))
	if err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	return t.refreshManifest()
}

// differsCond is the matched-clause gate: true when any listed column
// differs between the source row and the target row, NULL-safe.
func differsCond(cols []string, tq string) string {
	if len(cols) == 0 {
		return "TRUE"
	}
	parts := make([]string, len(cols))
	for i, c := range cols {
		parts[i] = fmt.Sprintf("s.%s IS DISTINCT FROM %s.%s", quoteIdent(c), tq, quoteIdent(c))
	}
	return "(" + strings.Join(parts, " OR ") + ")"
}
