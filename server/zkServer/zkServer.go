package zkServer

import (
	"errors"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/samuel/go-zookeeper/zk"
	"github.com/spf13/cast"

	"github.com/lypee/flakeid/base"
	"github.com/lypee/flakeid/common"
	"github.com/lypee/flakeid/utils"
)

// nodeStore is the part of *zk.Conn the lease needs.
type nodeStore interface {
	Create(path string, data []byte, flags int32, acl []zk.ACL) (string, error)
	Delete(path string, version int32) error
	Children(path string) ([]string, *zk.Stat, error)
	Close()
}

// zkLogger routes client chatter to debug level.
type zkLogger struct{}

func (zkLogger) Printf(format string, a ...interface{}) {
	base.DebugF(format, a...)
}

type Opt struct {
	Servers        []string
	SessionTimeout time.Duration
	// Root holds one ephemeral node per leased worker id
	Root string
	// Seed picks where probing starts, so hosts spread over the id space
	Seed string
	// MaxProbes bounds how many ids one AcquireWorkerID call tries
	MaxProbes int
}

type ConnOptFunc func(*Opt)

func DefaultOpt() *Opt {
	host, _ := os.Hostname()
	return &Opt{
		Servers:        []string{"127.0.0.1:2181"},
		SessionTimeout: 5 * time.Second,
		Root:           common.WorkIdPath,
		Seed:           utils.SpliceString(host, "/", strconv.Itoa(os.Getpid())),
		MaxProbes:      common.MaxWorkIdProbes,
	}
}

func WithServers(servers ...string) ConnOptFunc {
	return func(o *Opt) { o.Servers = servers }
}

func WithSessionTimeout(d time.Duration) ConnOptFunc {
	return func(o *Opt) { o.SessionTimeout = d }
}

func WithRoot(root string) ConnOptFunc {
	return func(o *Opt) { o.Root = strings.TrimRight(root, "/") }
}

func WithSeed(seed string) ConnOptFunc {
	return func(o *Opt) { o.Seed = seed }
}

func WithMaxProbes(n int) ConnOptFunc {
	return func(o *Opt) { o.MaxProbes = n }
}

// ZkServer leases worker ids as ephemeral ZooKeeper nodes, so two live
// processes never mint with the same id. A lease ends with ReleaseWorkerID,
// Shutdown or the session expiring.
type ZkServer struct {
	lock  sync.RWMutex
	errCh chan error
	done  chan struct{} // closed when the session watcher exits

	conn nodeStore
	opt  *Opt
	held map[int]struct{}
}

// NewZkServer connects and makes sure opt.Root exists. Session errors are
// forwarded to errCh, which Shutdown closes.
func NewZkServer(errCh chan error, ofs ...ConnOptFunc) (*ZkServer, error) {
	opt := DefaultOpt()
	for _, op := range ofs {
		op(opt)
	}
	if len(opt.Servers) == 0 {
		return nil, common.StartConnErr.WithMsg("no zookeeper servers configured")
	}

	c, events, err := zk.Connect(opt.Servers, opt.SessionTimeout, zk.WithLogger(zkLogger{}))
	if err != nil {
		base.WarningF("zk.Connect-err:[%+v]", err)
		return nil, common.StartConnErr.WithTrueErr(err)
	}

	srv := newZkServer(errCh, c, opt)
	srv.done = make(chan struct{})
	go srv.watch(events)
	if err := srv.ensureRoot(); err != nil {
		srv.Shutdown()
		return nil, err
	}
	return srv, nil
}

func newZkServer(errCh chan error, conn nodeStore, opt *Opt) *ZkServer {
	return &ZkServer{
		errCh: errCh,
		conn:  conn,
		opt:   opt,
		held:  make(map[int]struct{}),
	}
}

func (srv *ZkServer) watch(events <-chan zk.Event) {
	defer close(srv.done)
	for ev := range events {
		if ev.Err == nil && ev.State != zk.StateExpired {
			continue
		}
		err := ev.Err
		if err == nil {
			err = zk.ErrSessionExpired
		}
		select {
		case srv.errCh <- common.ConnErr.WithMsg("zookeeper session event %s", ev.State).WithTrueErr(err):
		default:
			base.WarningF("zk event dropped: %v", err)
		}
	}
}

func (srv *ZkServer) ensureRoot() error {
	path := ""
	for _, part := range strings.Split(strings.Trim(srv.opt.Root, "/"), "/") {
		if part == "" {
			return common.InvalidPathErr.WithMsg("invalid root %q", srv.opt.Root)
		}
		path = utils.SpliceString(path, "/", part)
		_, err := srv.conn.Create(path, nil, 0, zk.WorldACL(zk.PermAll))
		if err != nil && !errors.Is(err, zk.ErrNodeExists) {
			base.WarningF("create root %s: %v", path, err)
			return common.OpErr.WithTrueErr(err)
		}
	}
	return nil
}

func (srv *ZkServer) nodePath(workerID int) string {
	return utils.SpliceString(srv.opt.Root, common.WorkIdNodePrefix, strconv.Itoa(workerID))
}

// AcquireWorkerID leases the first free id in [0, maxID], probing from a
// seed-derived offset and giving up after opt.MaxProbes ids. The node data
// is the lease time in unix milliseconds.
func (srv *ZkServer) AcquireWorkerID(maxID int) (int, error) {
	if maxID < 0 {
		return 0, common.OpErr.WithMsg("invalid max worker id %d", maxID)
	}
	if srv.opt.MaxProbes <= 0 {
		return 0, common.OpErr.WithMsg("invalid max probes %d", srv.opt.MaxProbes)
	}
	srv.lock.Lock()
	defer srv.lock.Unlock()

	span := maxID + 1
	start := int(utils.GenMurmur(srv.opt.Seed) % uint32(span))
	probes := span
	if probes > srv.opt.MaxProbes {
		probes = srv.opt.MaxProbes
	}
	data := utils.Int64ToBytes(time.Now().UnixMilli())
	for i := 0; i < probes; i++ {
		workID := (start + i) % span
		path := srv.nodePath(workID)
		_, err := srv.conn.Create(path, data, zk.FlagEphemeral, zk.WorldACL(zk.PermAll))
		if errors.Is(err, zk.ErrNodeExists) {
			base.DebugF("path [%s] exist", path)
			continue
		}
		if err != nil {
			base.WarningF("set path: %s fail: %v", path, err)
			return 0, common.OpErr.WithTrueErr(err)
		}
		base.InfoF("set path: %s success", path)
		srv.held[workID] = struct{}{}
		return workID, nil
	}
	return 0, common.NoFreeIdErr.WithMsg("no free worker id under %s: probed %d of %d", srv.opt.Root, probes, span)
}

// ReleaseWorkerID drops a lease taken by this server.
func (srv *ZkServer) ReleaseWorkerID(workerID int) error {
	srv.lock.Lock()
	defer srv.lock.Unlock()

	if _, ok := srv.held[workerID]; !ok {
		return common.OpErr.WithMsg("worker id %d is not held", workerID)
	}
	if err := srv.removeNode(srv.nodePath(workerID)); err != nil {
		return err
	}
	delete(srv.held, workerID)
	return nil
}

// ListWorkerIDs returns every leased id under the root, held by anyone.
func (srv *ZkServer) ListWorkerIDs() ([]int, error) {
	srv.lock.RLock()
	defer srv.lock.RUnlock()

	cds, _, err := srv.conn.Children(srv.opt.Root)
	if err != nil {
		return nil, common.OpErr.WithTrueErr(err)
	}
	prefix := strings.TrimPrefix(common.WorkIdNodePrefix, "/")
	ids := make([]int, 0, len(cds))
	for _, cd := range cds {
		if !strings.HasPrefix(cd, prefix) {
			continue
		}
		id, err := cast.ToIntE(strings.TrimPrefix(cd, prefix))
		if err != nil {
			base.DebugF("skip node %s: %v", cd, err)
			continue
		}
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids, nil
}

// RemoveAllNode deletes every child of basePath and reports how many went.
func (srv *ZkServer) RemoveAllNode(basePath string) (int, error) {
	srv.lock.Lock()
	defer srv.lock.Unlock()

	cds, _, err := srv.conn.Children(basePath)
	if err != nil {
		return 0, common.OpErr.WithTrueErr(err)
	}
	delNums := 0
	for _, cd := range cds {
		path := utils.SpliceString(basePath, "/", cd)
		if err := srv.conn.Delete(path, -1); err != nil && !errors.Is(err, zk.ErrNoNode) {
			base.InfoF("c.Delete-err:[%+v]", err)
			continue
		}
		delNums++
	}
	if basePath == srv.opt.Root {
		srv.held = make(map[int]struct{})
	}
	base.InfoF("delete.Nums:[%d]", delNums)
	return delNums, nil
}

func (srv *ZkServer) removeNode(path string) error {
	err := srv.conn.Delete(path, -1)
	if err != nil && !errors.Is(err, zk.ErrNoNode) {
		base.WarningF("c.Delete-err:[%+v] %s", err, path)
		return common.OpErr.WithTrueErr(err)
	}
	return nil
}

// Shutdown releases held ids, closes the session and then errCh.
func (srv *ZkServer) Shutdown() {
	srv.lock.Lock()
	for id := range srv.held {
		_ = srv.removeNode(srv.nodePath(id))
	}
	srv.held = make(map[int]struct{})
	srv.lock.Unlock()

	srv.conn.Close()
	if srv.done != nil {
		<-srv.done
	}
	close(srv.errCh)
}
