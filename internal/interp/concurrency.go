package interp

import (
	"sync"

	"github.com/railwaylang/railway/internal/ast"
	raerr "github.com/railwaylang/railway/internal/errors"
	"github.com/railwaylang/railway/internal/lexer"
	"github.com/railwaylang/railway/internal/runtime"
	"github.com/railwaylang/railway/internal/types"
)

// laneInfo identifies one goroutine's position within a parallel call, for
// TID/#TID and for the named barrier/mutex constructs that coordinate
// lanes sharing one parallelState.
type laneInfo struct {
	tid   int
	n     int
	state *parallelState
}

// parallelState is shared by every lane spawned from one ParallelCall: its
// named barriers and named mutexes are keyed by name since a single body
// may contain more than one of each.
type parallelState struct {
	mu       sync.Mutex
	barriers map[string]*cyclicBarrier
	mutexes  map[string]*directionalMutex
	failed   error
}

func newParallelState(n int) *parallelState {
	return &parallelState{barriers: make(map[string]*cyclicBarrier), mutexes: make(map[string]*directionalMutex)}
}

func (ps *parallelState) barrier(name string, n int) *cyclicBarrier {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	b, ok := ps.barriers[name]
	if !ok {
		b = newCyclicBarrier(n)
		ps.barriers[name] = b
	}
	return b
}

func (ps *parallelState) mutex(name string, n int) *directionalMutex {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	m, ok := ps.mutexes[name]
	if !ok {
		m = newDirectionalMutex(n)
		ps.mutexes[name] = m
	}
	return m
}

func (ps *parallelState) fail(err error) {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	if ps.failed == nil {
		ps.failed = err
	}
}

// cyclicBarrier is a named, reusable rendezvous point: every lane blocks
// until all n lanes have arrived, then all are released together. It is
// self-inverse, so the same implementation serves forward and backward
// execution (spec §5).
type cyclicBarrier struct {
	mu         sync.Mutex
	cond       *sync.Cond
	n          int
	count      int
	generation int
}

func newCyclicBarrier(n int) *cyclicBarrier {
	b := &cyclicBarrier{n: n}
	b.cond = sync.NewCond(&b.mu)
	return b
}

func (b *cyclicBarrier) await() {
	b.mu.Lock()
	defer b.mu.Unlock()
	gen := b.generation
	b.count++
	if b.count == b.n {
		b.count = 0
		b.generation++
		b.cond.Broadcast()
		return
	}
	for gen == b.generation {
		b.cond.Wait()
	}
}

// directionalMutex is a named critical section that lanes enter in
// ascending TID order when running forwards, and descending TID order when
// running backwards (spec §5); the direction is latched by whichever lane
// enters first, so every lane in the body must agree on it or the whole
// group fails with KindMutexDirection.
type directionalMutex struct {
	mu        sync.Mutex
	cond      *sync.Cond
	n         int
	next      int // next TID (in the latched order) permitted to enter
	started   bool
	backwards bool
	failed    bool
}

func newDirectionalMutex(n int) *directionalMutex {
	m := &directionalMutex{n: n}
	m.cond = sync.NewCond(&m.mu)
	return m
}

// rank maps a lane's TID to its position in the latched entry order: TID
// itself when ascending, (n-1-TID) when descending.
func (m *directionalMutex) rank(tid int, backwards bool) int {
	if backwards {
		return m.n - 1 - tid
	}
	return tid
}

func (m *directionalMutex) enter(tid int, backwards bool, pos lexer.Position) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.started {
		m.started = true
		m.backwards = backwards
	} else if m.backwards != backwards {
		m.failed = true
		m.cond.Broadcast()
		return raerr.New(raerr.KindMutexDirection, pos, "lanes disagree on mutex entry direction")
	}
	want := m.rank(tid, m.backwards)
	for want != m.next {
		if m.failed {
			return raerr.New(raerr.KindMutexDirection, pos, "mutex aborted by a sibling lane's direction disagreement")
		}
		m.cond.Wait()
	}
	if m.failed {
		return raerr.New(raerr.KindMutexDirection, pos, "mutex aborted by a sibling lane's direction disagreement")
	}
	return nil
}

func (m *directionalMutex) leave() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.next++
	m.cond.Broadcast()
}

func (it *Interpreter) execBarrier(b *ast.Barrier, ec *execCtx) error {
	if ec == nil || ec.lane == nil {
		return raerr.New(raerr.KindMemAccess, b.Position, "barrier used outside a parallel call")
	}
	ec.lane.state.barrier(b.Name, ec.lane.n).await()
	return nil
}

func (it *Interpreter) execMutex(m *ast.Mutex, scope *runtime.Scope, backwards bool, ec *execCtx) error {
	if ec == nil || ec.lane == nil {
		return raerr.New(raerr.KindMemAccess, m.Position, "mutex used outside a parallel call")
	}
	dm := ec.lane.state.mutex(m.Name, ec.lane.n)
	if err := dm.enter(ec.lane.tid, backwards, m.Position); err != nil {
		return err
	}
	defer dm.leave()
	return it.execBlock(m.Body, scope, backwards, ec)
}

// execParallelCall spawns one goroutine lane per slice-index of the stolen
// arrays, each lane invoking fn with its own slice-index of every stolen
// argument and sharing the caller's borrowed cells directly (any lane may
// write them), then re-collects each lane's per-index returns back into
// arrays under the caller's output names (spec §5). The stolen arrays are
// removed from the caller's scope.
func (it *Interpreter) execParallelCall(pc *ast.ParallelCall, scope *runtime.Scope, backwards bool, ec *execCtx) error {
	fn, ok := it.funcs[pc.FuncName]
	if !ok {
		return raerr.New(raerr.KindExists, pc.Position, "undefined function %q", pc.FuncName)
	}
	bodyBackwards := backwards != pc.Uncall
	input, output := pc.Stolen, pc.Returns
	if bodyBackwards {
		input, output = pc.Returns, pc.Stolen
	}

	n, err := it.laneCount(pc, scope, backwards, ec, input)
	if err != nil {
		return err
	}

	inputArrays := make([]*types.Array, len(input))
	for i, name := range input {
		cell, err := scope.Unbind(name)
		if err != nil {
			return wrapScopeErr(err, pc.Position)
		}
		arr, ok := cell.Value().(*types.Array)
		if !ok || arr.Len() != n {
			return raerr.New(raerr.KindMemAccess, pc.Position, "parallel call argument %q must be an array of length %d", name, n)
		}
		inputArrays[i] = arr
	}

	state := newParallelState(n)
	outArrays := make([][]types.Value, len(output))
	for i := range outArrays {
		outArrays[i] = make([]types.Value, n)
	}

	var wg sync.WaitGroup
	laneErrs := make([]error, n)
	for lane := 0; lane < n; lane++ {
		wg.Add(1)
		go func(lane int) {
			defer wg.Done()
			laneScope := runtime.NewScope(it.globals)
			for _, bname := range pc.Borrowed {
				cell, err := scope.Resolve(bname)
				if err != nil {
					laneErrs[lane] = wrapScopeErr(err, pc.Position)
					return
				}
				if err := laneScope.Bind(bname, cell); err != nil {
					laneErrs[lane] = wrapScopeErr(err, pc.Position)
					return
				}
			}
			laneInput := make([]string, len(input))
			for i, name := range input {
				sliceCell := runtime.NewCell(inputArrays[i].Elems[lane].Clone())
				local := name + "$lane"
				if err := laneScope.Bind(local, sliceCell); err != nil {
					laneErrs[lane] = wrapScopeErr(err, pc.Position)
					return
				}
				laneInput[i] = local
			}
			laneOutput := make([]string, len(output))
			for i, name := range output {
				laneOutput[i] = name + "$lane"
			}
			laneEc := &execCtx{lane: &laneInfo{tid: lane, n: n, state: state}}
			if err := it.invoke(fn, pc.Borrowed, laneInput, laneOutput, bodyBackwards, laneScope, laneEc); err != nil {
				laneErrs[lane] = err
				state.fail(err)
				return
			}
			for i, local := range laneOutput {
				cell, err := laneScope.Resolve(local)
				if err != nil {
					laneErrs[lane] = wrapScopeErr(err, pc.Position)
					return
				}
				outArrays[i][lane] = cell.Value()
			}
		}(lane)
	}
	wg.Wait()

	for _, e := range laneErrs {
		if e != nil {
			return e
		}
	}

	for i, name := range output {
		if err := scope.Bind(name, runtime.NewCell(types.NewArray(outArrays[i]))); err != nil {
			return wrapScopeErr(err, pc.Position)
		}
	}
	return nil
}

func (it *Interpreter) laneCount(pc *ast.ParallelCall, scope *runtime.Scope, backwards bool, ec *execCtx, input []string) (int, error) {
	if pc.Lanes != nil {
		v, err := it.Eval(pc.Lanes, scope, backwards, ec)
		if err != nil {
			return 0, err
		}
		r, ok := v.(types.Rational)
		if !ok || !r.IsInt() || r.Int64() <= 0 {
			return 0, raerr.New(raerr.KindMemAccess, pc.Position, "parallel call lane count must be a positive integer")
		}
		return int(r.Int64()), nil
	}
	if len(input) == 0 {
		return 0, raerr.New(raerr.KindMemAccess, pc.Position, "parallel call needs an explicit lane count when it steals no arrays")
	}
	cell, err := scope.Resolve(input[0])
	if err != nil {
		return 0, wrapScopeErr(err, pc.Position)
	}
	arr, ok := cell.Value().(*types.Array)
	if !ok {
		return 0, raerr.New(raerr.KindMemAccess, pc.Position, "parallel call argument %q must be an array", input[0])
	}
	return arr.Len(), nil
}
