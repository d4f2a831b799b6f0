package interp

import (
	"fmt"

	"github.com/cascade-hdl/cascade/internal/ir"
	"github.com/cascade-hdl/cascade/internal/vartable"
)

// execStmt runs one post-mangle statement against t. By this stage every
// SystemTaskEnableStatement and NonblockingAssign has already been
// rewritten away (mangle.MangleSystemTasks / mangle.RewriteStmt), so only
// the plain control-flow and BlockingAssign shapes remain.
func execStmt(stmt ir.Node, t *vartable.Table) error {
	switch v := stmt.(type) {
	case nil:
		return nil
	case *ir.SeqBlock:
		var errOut error
		v.Items.Each(func(_ int, item ir.Node) {
			if errOut != nil {
				return
			}
			errOut = execStmt(item, t)
		})
		return errOut
	case *ir.ParBlock:
		var errOut error
		v.Items.Each(func(_ int, item ir.Node) {
			if errOut != nil {
				return
			}
			errOut = execStmt(item, t)
		})
		return errOut
	case *ir.BlockingAssign:
		val, err := evalRuntime(v.Rhs, t)
		if err != nil {
			return err
		}
		return assign(v.Lhs, val, t)
	case *ir.ConditionalStatement:
		cond, err := evalRuntime(v.Cond, t)
		if err != nil {
			return err
		}
		if cond.ReduceOr() != 0 {
			return execStmt(v.Then, t)
		}
		if v.Else != nil {
			return execStmt(v.Else, t)
		}
		return nil
	case *ir.CaseStatement:
		sel, err := evalRuntime(v.Selector, t)
		if err != nil {
			return err
		}
		var defaultItem *ir.CaseItem
		var errOut error
		matched := false
		v.Items.Each(func(_ int, item *ir.CaseItem) {
			if matched || errOut != nil {
				return
			}
			if item.Values.Len() == 0 {
				defaultItem = item
				return
			}
			item.Values.Each(func(_ int, val ir.Node) {
				if matched || errOut != nil {
					return
				}
				v, err := evalRuntime(val, t)
				if err != nil {
					errOut = err
					return
				}
				if v.ZeroExtend(sel.Width).Equal(sel.ZeroExtend(v.Width)) {
					matched = true
					errOut = execStmt(item.Body, t)
				}
			})
		})
		if errOut != nil {
			return errOut
		}
		if !matched && defaultItem != nil {
			return execStmt(defaultItem.Body, t)
		}
		return nil
	case *ir.TimingControlStatement:
		return execStmt(v.Body, t)
	case *ir.ContinuousAssign:
		val, err := evalRuntime(v.Rhs, t)
		if err != nil {
			return err
		}
		return assign(v.Lhs, val, t)
	default:
		return fmt.Errorf("%s:%d: statement kind not executable post-mangle", stmt.Position().File, stmt.Position().Line)
	}
}
