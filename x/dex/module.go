package dex

import (
	"context"
	"encoding/json"
	"fmt"

	"cosmossdk.io/core/appmodule"
	"github.com/cosmos/cosmos-sdk/client"
	"github.com/cosmos/cosmos-sdk/client/flags"
	"github.com/cosmos/cosmos-sdk/codec"
	codectypes "github.com/cosmos/cosmos-sdk/codec/types"
	servertypes "github.com/cosmos/cosmos-sdk/server/types"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/cosmos/cosmos-sdk/types/module"
	"github.com/grpc-ecosystem/grpc-gateway/runtime"
	"github.com/spf13/cast"

	"github.com/paw-chain/sdex/telemetry"
	"github.com/paw-chain/sdex/x/dex/keeper"
	"github.com/paw-chain/sdex/x/dex/types"
)

var (
	_ module.AppModuleBasic      = AppModuleBasic{}
	_ module.HasGenesis          = AppModule{}
	_ module.HasInvariants       = AppModule{}
	_ module.HasConsensusVersion = AppModule{}

	_ appmodule.AppModule       = AppModule{}
	_ appmodule.HasBeginBlocker = AppModule{}
	_ appmodule.HasEndBlocker   = AppModule{}
)

// AppModuleBasic defines the basic application module used by the dex module.
type AppModuleBasic struct {
	cdc codec.Codec
}

// Name returns the dex module's name.
func (AppModuleBasic) Name() string {
	return types.ModuleName
}

// RegisterLegacyAminoCodec is a no-op: the dex module defines no messages.
func (AppModuleBasic) RegisterLegacyAminoCodec(*codec.LegacyAmino) {}

// RegisterInterfaces is a no-op: the dex module defines no interfaces.
func (AppModuleBasic) RegisterInterfaces(codectypes.InterfaceRegistry) {}

// DefaultGenesis returns default genesis state as raw bytes for the dex
// module. The genesis types are plain Go structs and use encoding/json.
func (AppModuleBasic) DefaultGenesis(codec.JSONCodec) json.RawMessage {
	bz, err := json.Marshal(types.DefaultGenesis())
	if err != nil {
		panic(fmt.Errorf("failed to marshal %s default genesis: %w", types.ModuleName, err))
	}
	return bz
}

// ValidateGenesis performs genesis state validation for the dex module.
func (AppModuleBasic) ValidateGenesis(_ codec.JSONCodec, _ client.TxEncodingConfig, bz json.RawMessage) error {
	var genState types.GenesisState
	if err := json.Unmarshal(bz, &genState); err != nil {
		return fmt.Errorf("failed to unmarshal %s genesis state: %w", types.ModuleName, err)
	}
	return genState.Validate()
}

// RegisterGRPCGatewayRoutes registers no routes; the dex core is driven by
// the block pipeline and queried through the keeper.
func (AppModuleBasic) RegisterGRPCGatewayRoutes(client.Context, *runtime.ServeMux) {}

// AppModule implements an application module for the dex module.
type AppModule struct {
	AppModuleBasic

	keeper    *keeper.Keeper
	pipeline  *keeper.BlockPipeline
	telemetry *telemetry.Provider
}

// NewAppModule creates a new AppModule object and starts the DEX telemetry
// provider configured in appOpts. Without app options the configuration is
// taken from SDEX_ environment variables.
func NewAppModule(cdc codec.Codec, k *keeper.Keeper, appOpts servertypes.AppOptions) AppModule {
	provider, err := newTelemetryProvider(appOpts)
	if err != nil {
		panic(fmt.Errorf("failed to start %s telemetry: %w", types.ModuleName, err))
	}
	return AppModule{
		AppModuleBasic: AppModuleBasic{cdc: cdc},
		keeper:         k,
		pipeline:       keeper.NewBlockPipeline(k),
		telemetry:      provider,
	}
}

func newTelemetryProvider(appOpts servertypes.AppOptions) (*telemetry.Provider, error) {
	if appOpts == nil {
		cfg, err := telemetry.LoadConfig("", "")
		if err != nil {
			return nil, err
		}
		return telemetry.NewProvider(cfg)
	}
	chainID := cast.ToString(appOpts.Get(flags.FlagChainID))
	return telemetry.NewProvider(telemetry.ConfigFromAppOptions(appOpts, chainID))
}

// Telemetry returns the module's telemetry provider; the host app shuts it
// down on exit.
func (am AppModule) Telemetry() *telemetry.Provider {
	return am.telemetry
}

// Name returns the dex module's name.
func (am AppModule) Name() string {
	return am.AppModuleBasic.Name()
}

// Pipeline exposes the block pipeline so that position and swap effects
// executed during the block can reach the current block context.
func (am AppModule) Pipeline() *keeper.BlockPipeline {
	return am.pipeline
}

// RegisterInvariants registers the dex module invariants.
func (am AppModule) RegisterInvariants(ir sdk.InvariantRegistry) {
	keeper.RegisterInvariants(ir, *am.keeper)
}

// InitGenesis performs genesis initialization for the dex module.
func (am AppModule) InitGenesis(ctx sdk.Context, _ codec.JSONCodec, gs json.RawMessage) {
	var genState types.GenesisState
	if err := json.Unmarshal(gs, &genState); err != nil {
		panic(fmt.Errorf("failed to unmarshal %s genesis state: %w", types.ModuleName, err))
	}
	if err := am.keeper.InitGenesis(ctx, genState); err != nil {
		panic(fmt.Errorf("failed to initialize %s genesis state: %w", types.ModuleName, err))
	}
}

// ExportGenesis returns the exported genesis state as raw bytes for the dex
// module.
func (am AppModule) ExportGenesis(ctx sdk.Context, _ codec.JSONCodec) json.RawMessage {
	genState, err := am.keeper.ExportGenesis(ctx)
	if err != nil {
		panic(fmt.Errorf("failed to export %s genesis state: %w", types.ModuleName, err))
	}
	bz, err := json.Marshal(genState)
	if err != nil {
		panic(fmt.Errorf("failed to marshal %s genesis state: %w", types.ModuleName, err))
	}
	return bz
}

// ConsensusVersion implements ConsensusVersion.
func (AppModule) ConsensusVersion() uint64 { return 1 }

// BeginBlock opens the block context for the dex module.
func (am AppModule) BeginBlock(ctx context.Context) error {
	am.pipeline.Begin(ctx)
	return nil
}

// EndBlock settles the block. Only fatal errors are returned.
func (am AppModule) EndBlock(ctx context.Context) error {
	return am.pipeline.Finish(ctx)
}

// IsOnePerModuleType implements the depinject.OnePerModuleType interface.
func (am AppModule) IsOnePerModuleType() {}

// IsAppModule implements the appmodule.AppModule interface.
func (am AppModule) IsAppModule() {}
