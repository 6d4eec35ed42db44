// Command freedomd is the Freedom Network node daemon: it binds the QUIC
// transport, HTTP forward-proxy gateway, and dashboard server, and wires
// the directory/onion-router node pool together. Grounded on the teacher's
// main.go (flag-or-env config, sequential fatal-on-bind-failure startup,
// block-forever tail).
package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/freedomnet/node/internal/dashboard"
	"github.com/freedomnet/node/internal/directory"
	"github.com/freedomnet/node/internal/logging"
	"github.com/freedomnet/node/internal/metrics"
	"github.com/freedomnet/node/internal/nodeconfig"
	"github.com/freedomnet/node/internal/onion"
	"github.com/freedomnet/node/internal/proxy"
	"github.com/freedomnet/node/internal/quictransport"
	"github.com/freedomnet/node/internal/resolver"
	"github.com/freedomnet/node/internal/router"
)

func main() {
	cfg, err := nodeconfig.FromEnv()
	if err != nil {
		log.Fatalf("[freedomd] config: %v", err)
	}

	flag.IntVar(&cfg.APIPort, "api-port", cfg.APIPort, "dashboard HTTP port")
	flag.IntVar(&cfg.ProxyPort, "proxy-port", cfg.ProxyPort, "forward-proxy TCP port")
	flag.IntVar(&cfg.QUICPort, "quic-port", cfg.QUICPort, "QUIC transport UDP port")
	flag.BoolVar(&cfg.HardenedOnion, "onion-hardened", cfg.HardenedOnion, "use AEAD layered cipher instead of the legacy XOR scheme")
	flag.Parse()

	nodeLog := logging.New("freedomd")

	quicAddr := fmt.Sprintf("127.0.0.1:%d", cfg.QUICPort)
	quicSrv, err := quictransport.Listen(quicAddr)
	if err != nil {
		nodeLog.Fatalf("quic listen: %v", err)
	}
	localID := quicSrv.NodeID()
	nodeLog.Printf("local node id %s", localID)

	dir := directory.New(localID, directory.DefaultBucketSize)
	// Self-registration (SPEC_FULL.md §4.11): a lone node can still answer
	// find_closest_peers and build degenerate single-hop circuits.
	dir.RegisterPeer(directory.PeerInfo{NodeID: localID, Addr: quicAddr})

	cipherMode := onion.LegacyXORMode
	if cfg.HardenedOnion {
		cipherMode = onion.HardenedMode
	}
	onionRouter := onion.NewRouter(cipherMode)
	onionRouter.RegisterNode(localID)

	wireRouter := router.New()
	nameResolver := resolver.New(dir)
	overlay := proxy.NewOverlayBridge(nameResolver, dir, onionRouter, wireRouter)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		if err := quicSrv.Run(ctx); err != nil {
			nodeLog.Fatalf("quic: %v", err)
		}
	}()

	proxyMetrics := metrics.New()
	proxyAddr := fmt.Sprintf("127.0.0.1:%d", cfg.ProxyPort)
	proxySrv, err := proxy.Listen(proxyAddr, proxyMetrics)
	if err != nil {
		nodeLog.Fatalf("proxy listen: %v", err)
	}
	proxySrv.SetOverlay(overlay)
	go func() {
		if err := proxySrv.Run(); err != nil {
			nodeLog.Fatalf("proxy: %v", err)
		}
	}()
	nodeLog.Printf("forward proxy listening on %s", proxySrv.Addr())

	dashAddr := fmt.Sprintf("127.0.0.1:%d", cfg.APIPort)
	dashSrv, err := dashboard.Listen(dashAddr, proxyMetrics, dir)
	if err != nil {
		nodeLog.Fatalf("dashboard listen: %v", err)
	}
	dashSrv.SetPeerRegistrar(dir)
	go func() {
		if err := dashSrv.Run(); err != nil {
			nodeLog.Fatalf("dashboard: %v", err)
		}
	}()
	nodeLog.Printf("dashboard listening on %s", dashSrv.Addr())

	select {} // block forever
}
