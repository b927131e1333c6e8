package cant

import "fmt"

// Rough per-object byte costs. The estimate only has to catch scripts
// that accumulate unbounded state, not match the Go allocator.
const (
	estimatedValueBytes        = 24
	estimatedStringHeaderBytes = 16
	estimatedSliceBaseBytes    = 24
	estimatedMapBaseBytes      = 48
	estimatedMapEntryBytes     = 32
	estimatedEnvBytes          = 16
	estimatedCallFrameBytes    = 32
)

type memoryEstimator struct {
	seenEnvs   map[*environment]struct{}
	seenArrays map[*Array]struct{}
	seenHashes map[*Hash]struct{}
	seenFuncs  map[*Function]struct{}
}

func newMemoryEstimator() *memoryEstimator {
	return &memoryEstimator{
		seenEnvs:   make(map[*environment]struct{}),
		seenArrays: make(map[*Array]struct{}),
		seenHashes: make(map[*Hash]struct{}),
		seenFuncs:  make(map[*Function]struct{}),
	}
}

func (exec *Execution) checkMemory() error {
	return exec.checkMemoryWith()
}

func (exec *Execution) checkMemoryWith(extras ...Value) error {
	if exec.memoryQuota <= 0 {
		return nil
	}

	// Walk every live scope, not just the root. Function and block
	// locals would otherwise escape the quota entirely.
	est := newMemoryEstimator()
	total := est.env(exec.rootEnv)
	for _, env := range exec.envStack {
		total += est.env(env)
	}
	total += len(exec.callStack) * estimatedCallFrameBytes
	for _, extra := range extras {
		total += est.value(extra)
	}
	if total > exec.memoryQuota {
		return fmt.Errorf("%w (%d bytes)", ErrMemoryQuota, exec.memoryQuota)
	}
	return nil
}

func (est *memoryEstimator) env(env *environment) int {
	if env == nil {
		return 0
	}
	if _, seen := est.seenEnvs[env]; seen {
		return 0
	}
	est.seenEnvs[env] = struct{}{}

	size := estimatedEnvBytes + estimatedMapBaseBytes + len(env.vars)*estimatedMapEntryBytes
	for name, val := range env.vars {
		size += estimatedStringHeaderBytes + len(name)
		size += est.value(val)
	}
	size += est.env(env.parent)
	return size
}

func (est *memoryEstimator) value(val Value) int {
	size := estimatedValueBytes

	switch val.Kind() {
	case KindString:
		size += estimatedStringHeaderBytes + len(val.String())
	case KindArray:
		arr := val.Array()
		if _, seen := est.seenArrays[arr]; seen {
			return size
		}
		est.seenArrays[arr] = struct{}{}
		size += estimatedSliceBaseBytes
		for _, item := range arr.Items {
			size += est.value(item)
		}
	case KindHash:
		h := val.Hash()
		if _, seen := est.seenHashes[h]; seen {
			return size
		}
		est.seenHashes[h] = struct{}{}
		size += estimatedMapBaseBytes + h.Len()*estimatedMapEntryBytes
		for _, key := range h.Keys() {
			entry, _ := h.Get(key)
			size += estimatedStringHeaderBytes + len(key)
			size += est.value(entry)
		}
	case KindFunction:
		fn := val.Function()
		if _, seen := est.seenFuncs[fn]; seen {
			return size
		}
		est.seenFuncs[fn] = struct{}{}
		size += est.env(fn.Env)
	}

	return size
}
