package assets

import (
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spaghettifunk/offaxis/engine/config"
	"github.com/spaghettifunk/offaxis/engine/core"
)

type AssetType int

const (
	AssetTypeNone AssetType = iota
	AssetTypeRig
)

func (t AssetType) String() string {
	switch t {
	case AssetTypeRig:
		return "rig"
	default:
		return "none"
	}
}

type AssetInfo struct {
	Path       string
	Type       AssetType
	LastLoaded time.Time
}

// AssetEvent carries the outcome of reloading a watched asset.
type AssetEvent struct {
	Path  string
	Type  AssetType
	Asset interface{}
	Err   error
}

type Loader interface {
	Load(path string) (interface{}, error)
}

// RigLoader loads camera rig files.
type RigLoader struct{}

func (RigLoader) Load(path string) (interface{}, error) {
	return config.Load(path)
}

// DefaultDebounce is how long the manager waits for a burst of writes to a
// file to settle before reloading it.
const DefaultDebounce = 100 * time.Millisecond

var ErrClosed = errors.New("asset manager already closed")

type AssetManager struct {
	assets  map[string]AssetInfo
	loaders map[AssetType]Loader

	mutex sync.RWMutex

	debounce  time.Duration
	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
	fsnotify  *fsnotify.Watcher
	events    chan AssetEvent
}

func NewAssetManager(debounce time.Duration) (*AssetManager, error) {
	fsWatch, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	am := &AssetManager{
		assets:   make(map[string]AssetInfo),
		loaders:  make(map[AssetType]Loader),
		debounce: debounce,
		fsnotify: fsWatch,
		events:   make(chan AssetEvent),
		done:     make(chan struct{}),
	}
	// Register loaders
	am.registerLoader(AssetTypeRig, RigLoader{})

	am.wg.Add(1)
	go am.start()
	return am, nil
}

// Register loaders for each asset type
func (am *AssetManager) registerLoader(assetType AssetType, loader Loader) {
	am.loaders[assetType] = loader
}

// Events delivers one event per reload. It is closed by Close.
func (am *AssetManager) Events() <-chan AssetEvent {
	return am.events
}

// Watch starts watching the file at path. The parent directory is watched
// so that editors replacing the file are noticed too.
func (am *AssetManager) Watch(path string) error {
	select {
	case <-am.done:
		return ErrClosed
	default:
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	assetType := determineAssetType(abs)
	if assetType == AssetTypeNone {
		return fmt.Errorf("cannot watch '%s': unknown asset type", path)
	}
	if err := am.fsnotify.Add(filepath.Dir(abs)); err != nil {
		return err
	}

	am.mutex.Lock()
	defer am.mutex.Unlock()
	am.assets[abs] = AssetInfo{Path: abs, Type: assetType}
	return nil
}

// LoadAsset loads a watched or unwatched asset with the appropriate loader.
func (am *AssetManager) LoadAsset(path string) (interface{}, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	assetType := determineAssetType(abs)
	loader, ok := am.loaders[assetType]
	if !ok {
		return nil, fmt.Errorf("no loader registered for asset type: %s", assetType)
	}
	asset, err := loader.Load(abs)
	if err != nil {
		return nil, err
	}

	am.mutex.Lock()
	if info, watched := am.assets[abs]; watched {
		// Update the loaded time
		info.LastLoaded = time.Now()
		am.assets[abs] = info
	}
	am.mutex.Unlock()
	return asset, nil
}

// Info returns the bookkeeping of a watched asset.
func (am *AssetManager) Info(path string) (AssetInfo, bool) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return AssetInfo{}, false
	}
	am.mutex.RLock()
	defer am.mutex.RUnlock()
	info, ok := am.assets[abs]
	return info, ok
}

func (am *AssetManager) watched(path string) (AssetInfo, bool) {
	am.mutex.RLock()
	defer am.mutex.RUnlock()
	info, ok := am.assets[path]
	return info, ok
}

// Close stops watching and closes the events channel.
func (am *AssetManager) Close() error {
	var err error
	am.closeOnce.Do(func() {
		close(am.done)
		am.wg.Wait()
		err = am.fsnotify.Close()
		close(am.events)
	})
	return err
}

func (am *AssetManager) start() {
	defer am.wg.Done()

	var timer *time.Timer
	var fire <-chan time.Time
	pending := make(map[string]struct{})

	for {
		select {
		case e, ok := <-am.fsnotify.Events:
			if !ok {
				return
			}
			name := filepath.Clean(e.Name)
			if _, ok := am.watched(name); !ok {
				continue
			}
			if e.Op&fsnotify.Remove != 0 {
				core.LogWarn("watched asset '%s' was removed", name)
				continue
			}
			// Handle create or modify events
			if e.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			pending[name] = struct{}{}
			if timer == nil {
				timer = time.NewTimer(am.debounce)
			} else {
				timer.Reset(am.debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			for name := range pending {
				delete(pending, name)
				if !am.emit(am.reload(name)) {
					return
				}
			}

		case err, ok := <-am.fsnotify.Errors:
			if !ok {
				return
			}
			core.LogError(err.Error())

		case <-am.done:
			if timer != nil {
				timer.Stop()
			}
			return
		}
	}
}

func (am *AssetManager) reload(path string) AssetEvent {
	info, _ := am.watched(path)
	asset, err := am.LoadAsset(path)
	if err != nil {
		core.LogError("reloading %s '%s' failed: %s", info.Type, path, err)
	} else {
		core.LogInfo("reloaded %s '%s'", info.Type, path)
	}
	return AssetEvent{Path: path, Type: info.Type, Asset: asset, Err: err}
}

func (am *AssetManager) emit(e AssetEvent) bool {
	select {
	case am.events <- e:
		return true
	case <-am.done:
		return false
	}
}

func determineAssetType(path string) AssetType {
	switch filepath.Ext(path) {
	case ".toml":
		return AssetTypeRig
	default:
		return AssetTypeNone
	}
}
