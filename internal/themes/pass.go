package themes

import "sync"

// Pass caches loaded theme chains for the duration of a render pass. Include
// tokens stay lazy, so cached chains never serve stale file content; only the
// file listing and manifest are cached.
type Pass struct {
	loader *Loader

	mu    sync.Mutex
	cache map[string]*Info
}

// NewPass creates an empty pass over loader.
func NewPass(loader *Loader) *Pass {
	return &Pass{loader: loader, cache: make(map[string]*Info)}
}

// Load returns the cached chain for id, loading it on first use.
func (p *Pass) Load(id string) (*Info, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if info, ok := p.cache[id]; ok {
		return info, nil
	}
	info, err := p.loader.LoadChain(id)
	if err != nil {
		return nil, err
	}
	p.cache[id] = info
	return info, nil
}

// Tokens loads ids and merges them for a resource living in folder.
func (p *Pass) Tokens(folder string, ids ...string) (*TokenSet, error) {
	infos := make([]*Info, 0, len(ids))
	for _, id := range ids {
		info, err := p.Load(id)
		if err != nil {
			return nil, err
		}
		infos = append(infos, info)
	}
	return MergeTokens(infos, folder, p.loader.Mode()), nil
}

// Invalidate drops every cached chain that includes id and reports how many
// entries were removed.
func (p *Pass) Invalidate(id string) int {
	p.mu.Lock()
	defer p.mu.Unlock()

	removed := 0
	for key, info := range p.cache {
		for _, link := range info.Chain() {
			if link.ID == id {
				delete(p.cache, key)
				removed++
				break
			}
		}
	}
	return removed
}

// Reset drops every cached chain.
func (p *Pass) Reset() {
	p.mu.Lock()
	p.cache = make(map[string]*Info)
	p.mu.Unlock()
}

// Loader returns the loader backing the pass.
func (p *Pass) Loader() *Loader {
	return p.loader
}
