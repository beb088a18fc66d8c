package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	jRPC "github.com/0xPolygon/cdk-rpc/rpc"
	"github.com/0xPolygon/msgrelayer"
	relayercommon "github.com/0xPolygon/msgrelayer/common"
	"github.com/0xPolygon/msgrelayer/config"
	"github.com/0xPolygon/msgrelayer/log"
	"github.com/0xPolygon/msgrelayer/messagesync"
	"github.com/0xPolygon/msgrelayer/rpc"
	"github.com/0xPolygon/msgrelayer/treeprocessor"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"
)

func start(cliCtx *cli.Context) error {
	c, err := config.Load(cliCtx)
	if err != nil {
		return err
	}

	log.Init(c.Log)

	if c.Log.Environment == log.EnvironmentDevelopment {
		msgrelayer.PrintVersion(os.Stdout)
		log.Info("Starting application")
	} else if c.Log.Environment == log.EnvironmentProduction {
		logVersion()
	}

	ctx, stop := signal.NotifyContext(cliCtx.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()
	g, ctx := errgroup.WithContext(ctx)

	components := cliCtx.StringSlice(config.FlagComponents)
	originClient := runOriginClientIfNeeded(ctx, components, c.Common, c.MessageSync)
	messageSync := runMessageSyncIfNeeded(ctx, g, components, c.MessageSync, originClient)
	merkleTree := runMerkleTreeIfNeeded(ctx, g, components, c.MerkleTree, messageSync)

	for _, component := range components {
		if component == relayercommon.RPC {
			server := createRPC(c.RPC, merkleTree, messageSync)
			go func() {
				if err := server.Start(); err != nil {
					log.Fatal(err)
				}
			}()
		}
	}

	if err := g.Wait(); err != nil {
		return err
	}
	log.Info("terminating application gracefully...")
	return nil
}

func logVersion() {
	log.Infow("Starting application",
		// version is already logged by default
		"gitRevision", msgrelayer.GitRev,
		"gitBranch", msgrelayer.GitBranch,
		"goVersion", runtime.Version(),
		"built", msgrelayer.BuildDate,
		"os/arch", fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
	)
}

func isNeeded(casesWhereNeeded, actualCases []string) bool {
	for _, actualCase := range actualCases {
		for _, caseWhereNeeded := range casesWhereNeeded {
			if actualCase == caseWhereNeeded {
				return true
			}
		}
	}

	return false
}

func runOriginClientIfNeeded(
	ctx context.Context, components []string, cfg relayercommon.Config, syncCfg messagesync.Config,
) *ethclient.Client {
	if !isNeeded([]string{relayercommon.MESSAGE_SYNC, relayercommon.MERKLE_TREE, relayercommon.RPC}, components) {
		return nil
	}
	domain, err := relayercommon.DomainFromName(cfg.OriginDomain)
	if err != nil {
		log.Fatal(err)
	}

	log.Debugf("dialing %s client at: %s", domain, cfg.OriginURL)
	client, err := ethclient.Dial(cfg.OriginURL)
	if err != nil {
		log.Fatalf("failed to create client for %s using URL: %s. Err:%v", domain, cfg.OriginURL, err)
	}
	chainID, err := client.ChainID(ctx)
	if err != nil {
		log.Fatalf("failed to get chain id of %s. Err:%v", domain, err)
	}
	if chainID.Uint64() != uint64(domain) {
		log.Warnf("chain id %d of %s doesn't match its domain id %d", chainID.Uint64(), domain, uint32(domain))
	}

	contracts := []originContract{
		{
			name:    "mailbox",
			locator: relayercommon.ContractLocator{ChainName: cfg.OriginDomain, Domain: domain, Address: syncCfg.MailboxAddr},
		},
		{
			name: "merkle tree hook",
			locator: relayercommon.ContractLocator{
				ChainName: cfg.OriginDomain, Domain: domain, Address: syncCfg.MerkleTreeHookAddr,
			},
		},
	}
	for _, description := range describeOriginContracts(ctx, relayercommon.NewEVMChain(domain, client), contracts) {
		log.Info(description)
	}

	return client
}

type originContract struct {
	name    string
	locator relayercommon.ContractLocator
}

// describeOriginContracts returns one line per contract with its locator and balance
func describeOriginContracts(
	ctx context.Context, chain relayercommon.Chain, contracts []originContract,
) []string {
	descriptions := make([]string, 0, len(contracts))
	for _, c := range contracts {
		balance, err := chain.QueryBalance(ctx, c.locator.Address)
		if err != nil {
			descriptions = append(descriptions, fmt.Sprintf("%s at %s, unknown balance: %s", c.name, c.locator, err))
			continue
		}
		descriptions = append(descriptions, fmt.Sprintf("%s at %s, balance: %s wei", c.name, c.locator, balance))
	}
	return descriptions
}

func runMessageSyncIfNeeded(
	ctx context.Context,
	g *errgroup.Group,
	components []string,
	cfg messagesync.Config,
	client *ethclient.Client,
) *messagesync.MessageSync {
	if !isNeeded([]string{relayercommon.MESSAGE_SYNC, relayercommon.MERKLE_TREE, relayercommon.RPC}, components) {
		return nil
	}
	ms, err := messagesync.NewFromConfig(ctx, cfg, client)
	if err != nil {
		log.Fatalf("error creating message sync: %s", err)
	}
	g.Go(func() error {
		ms.Start(ctx)
		return nil
	})

	return ms
}

func runMerkleTreeIfNeeded(
	ctx context.Context,
	g *errgroup.Group,
	components []string,
	cfg treeprocessor.Config,
	source treeprocessor.LeafSource,
) *treeprocessor.Processor {
	if !isNeeded([]string{relayercommon.MERKLE_TREE, relayercommon.RPC}, components) {
		return nil
	}
	tree, err := treeprocessor.New(cfg, source)
	if err != nil {
		log.Fatalf("error creating merkle tree processor: %s", err)
	}
	g.Go(func() error {
		return tree.Start(ctx)
	})

	return tree
}

func createRPC(
	cfg jRPC.Config,
	tree *treeprocessor.Processor,
	messages *messagesync.MessageSync,
) *jRPC.Server {
	logger := log.WithFields("module", relayercommon.RPC)
	services := []jRPC.Service{
		{
			Name: rpc.RELAYER,
			Service: rpc.NewRelayerEndpoints(
				logger,
				cfg.ReadTimeout.Duration,
				tree,
				messages,
			),
		},
	}

	return jRPC.NewServer(cfg, services, jRPC.WithLogger(logger.GetSugaredLogger()))
}
