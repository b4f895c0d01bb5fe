package protocol

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var ErrInvalidEnum = errors.New("protocol: invalid enum value")

// Hand values used by UseEntity, Animation, PlayerBlockPlacement and UseItem.
const (
	HandMain int32 = 0
	HandOff  int32 = 1
)

const (
	maxChatLen        = 256
	maxTabCompleteLen = 32767
	maxLocaleLen      = 16
	maxChannelLen     = 20
	maxSignLineLen    = 384
	maxIdentifierLen  = 32767
)

type TeleportConfirm struct {
	TeleportID int32
}

func (p *TeleportConfirm) Decode(r *Reader) (err error) {
	p.TeleportID, err = r.ReadVarInt()
	return err
}

func (p *TeleportConfirm) Encode(w *Writer) error {
	w.WriteVarInt(p.TeleportID)
	return nil
}

// TabComplete asks for completions of Text. LookedAtBlock is nil when the
// client is not looking at a block.
type TabComplete struct {
	Text          string
	AssumeCommand bool
	LookedAtBlock *Position
}

func (p *TabComplete) Decode(r *Reader) (err error) {
	if p.Text, err = r.ReadString(maxTabCompleteLen); err != nil {
		return err
	}
	if p.AssumeCommand, err = r.ReadBool(); err != nil {
		return err
	}
	hasPosition, err := r.ReadBool()
	if err != nil || !hasPosition {
		return err
	}
	pos, err := r.ReadPosition()
	if err != nil {
		return err
	}
	p.LookedAtBlock = &pos
	return nil
}

func (p *TabComplete) Encode(w *Writer) error {
	if err := w.WriteString(p.Text, maxTabCompleteLen); err != nil {
		return err
	}
	w.WriteBool(p.AssumeCommand)
	w.WriteBool(p.LookedAtBlock != nil)
	if p.LookedAtBlock != nil {
		return w.WritePosition(*p.LookedAtBlock)
	}
	return nil
}

type ChatMessage struct {
	Message string
}

func (p *ChatMessage) Decode(r *Reader) (err error) {
	p.Message, err = r.ReadString(maxChatLen)
	return err
}

func (p *ChatMessage) Encode(w *Writer) error {
	return w.WriteString(p.Message, maxChatLen)
}

// ClientStatus.Action values.
const (
	ClientStatusRespawn      int32 = 0
	ClientStatusRequestStats int32 = 1
)

type ClientStatus struct {
	Action int32
}

func (p *ClientStatus) Decode(r *Reader) (err error) {
	p.Action, err = r.ReadVarInt()
	return err
}

func (p *ClientStatus) Encode(w *Writer) error {
	w.WriteVarInt(p.Action)
	return nil
}

type ClientSettings struct {
	Locale             string
	ViewDistance       int8
	ChatMode           int32
	ChatColors         bool
	DisplayedSkinParts uint8
	MainHand           int32
}

func (p *ClientSettings) Decode(r *Reader) (err error) {
	if p.Locale, err = r.ReadString(maxLocaleLen); err != nil {
		return err
	}
	if p.ViewDistance, err = r.ReadInt8(); err != nil {
		return err
	}
	if p.ChatMode, err = r.ReadVarInt(); err != nil {
		return err
	}
	if p.ChatColors, err = r.ReadBool(); err != nil {
		return err
	}
	if p.DisplayedSkinParts, err = r.ReadUint8(); err != nil {
		return err
	}
	p.MainHand, err = r.ReadVarInt()
	return err
}

func (p *ClientSettings) Encode(w *Writer) error {
	if err := w.WriteString(p.Locale, maxLocaleLen); err != nil {
		return err
	}
	w.WriteInt8(p.ViewDistance)
	w.WriteVarInt(p.ChatMode)
	w.WriteBool(p.ChatColors)
	w.WriteUint8(p.DisplayedSkinParts)
	w.WriteVarInt(p.MainHand)
	return nil
}

type ConfirmTransaction struct {
	WindowID     int8
	ActionNumber int16
	Accepted     bool
}

func (p *ConfirmTransaction) Decode(r *Reader) (err error) {
	if p.WindowID, err = r.ReadInt8(); err != nil {
		return err
	}
	if p.ActionNumber, err = r.ReadInt16(); err != nil {
		return err
	}
	p.Accepted, err = r.ReadBool()
	return err
}

func (p *ConfirmTransaction) Encode(w *Writer) error {
	w.WriteInt8(p.WindowID)
	w.WriteInt16(p.ActionNumber)
	w.WriteBool(p.Accepted)
	return nil
}

type EnchantItem struct {
	WindowID    int8
	Enchantment int8
}

func (p *EnchantItem) Decode(r *Reader) (err error) {
	if p.WindowID, err = r.ReadInt8(); err != nil {
		return err
	}
	p.Enchantment, err = r.ReadInt8()
	return err
}

func (p *EnchantItem) Encode(w *Writer) error {
	w.WriteInt8(p.WindowID)
	w.WriteInt8(p.Enchantment)
	return nil
}

type ClickWindow struct {
	WindowID     uint8
	Slot         int16
	Button       int8
	ActionNumber int16
	Mode         int32
	ClickedItem  Slot
}

func (p *ClickWindow) Decode(r *Reader) (err error) {
	if p.WindowID, err = r.ReadUint8(); err != nil {
		return err
	}
	if p.Slot, err = r.ReadInt16(); err != nil {
		return err
	}
	if p.Button, err = r.ReadInt8(); err != nil {
		return err
	}
	if p.ActionNumber, err = r.ReadInt16(); err != nil {
		return err
	}
	if p.Mode, err = r.ReadVarInt(); err != nil {
		return err
	}
	p.ClickedItem, err = r.ReadSlot()
	return err
}

func (p *ClickWindow) Encode(w *Writer) error {
	w.WriteUint8(p.WindowID)
	w.WriteInt16(p.Slot)
	w.WriteInt8(p.Button)
	w.WriteInt16(p.ActionNumber)
	w.WriteVarInt(p.Mode)
	return w.WriteSlot(p.ClickedItem)
}

type CloseWindow struct {
	WindowID uint8
}

func (p *CloseWindow) Decode(r *Reader) (err error) {
	p.WindowID, err = r.ReadUint8()
	return err
}

func (p *CloseWindow) Encode(w *Writer) error {
	w.WriteUint8(p.WindowID)
	return nil
}

// PluginMessage carries mod data. Data runs to the end of the packet.
type PluginMessage struct {
	Channel string
	Data    []byte
}

func (p *PluginMessage) Decode(r *Reader) (err error) {
	if p.Channel, err = r.ReadString(maxChannelLen); err != nil {
		return err
	}
	p.Data, err = r.ReadRemaining()
	return err
}

func (p *PluginMessage) Encode(w *Writer) error {
	if err := w.WriteString(p.Channel, maxChannelLen); err != nil {
		return err
	}
	return w.WriteRemaining(p.Data)
}

// UseEntity.Type values.
const (
	UseEntityInteract   int32 = 0
	UseEntityAttack     int32 = 1
	UseEntityInteractAt int32 = 2
)

// UseEntity interacts with or attacks an entity. TargetX/Y/Z are only sent
// for UseEntityInteractAt; Hand is sent for every type except UseEntityAttack.
// Encode rejects non-zero fields the Type does not send.
type UseEntity struct {
	Target  int32
	Type    int32
	TargetX float32
	TargetY float32
	TargetZ float32
	Hand    int32
}

func (p *UseEntity) Decode(r *Reader) (err error) {
	if p.Target, err = r.ReadVarInt(); err != nil {
		return err
	}
	if p.Type, err = r.ReadVarInt(); err != nil {
		return err
	}
	switch p.Type {
	case UseEntityAttack:
		return nil
	case UseEntityInteractAt:
		if p.TargetX, err = r.ReadFloat32(); err != nil {
			return err
		}
		if p.TargetY, err = r.ReadFloat32(); err != nil {
			return err
		}
		if p.TargetZ, err = r.ReadFloat32(); err != nil {
			return err
		}
	case UseEntityInteract:
	default:
		return fmt.Errorf("use entity type %d: %w", p.Type, ErrInvalidEnum)
	}
	p.Hand, err = r.ReadVarInt()
	return err
}

func (p *UseEntity) Encode(w *Writer) error {
	hasTarget := p.TargetX != 0 || p.TargetY != 0 || p.TargetZ != 0
	switch p.Type {
	case UseEntityAttack:
		if hasTarget || p.Hand != 0 {
			return fmt.Errorf("use entity attack with target or hand: %w", ErrFieldNotSent)
		}
	case UseEntityInteract:
		if hasTarget {
			return fmt.Errorf("use entity interact with target: %w", ErrFieldNotSent)
		}
	case UseEntityInteractAt:
	default:
		return fmt.Errorf("use entity type %d: %w", p.Type, ErrInvalidEnum)
	}

	w.WriteVarInt(p.Target)
	w.WriteVarInt(p.Type)
	if p.Type == UseEntityAttack {
		return nil
	}
	if p.Type == UseEntityInteractAt {
		w.WriteFloat32(p.TargetX)
		w.WriteFloat32(p.TargetY)
		w.WriteFloat32(p.TargetZ)
	}
	w.WriteVarInt(p.Hand)
	return nil
}

type KeepAlive struct {
	ID int64
}

func (p *KeepAlive) Decode(r *Reader) (err error) {
	p.ID, err = r.ReadInt64()
	return err
}

func (p *KeepAlive) Encode(w *Writer) error {
	w.WriteInt64(p.ID)
	return nil
}

type Player struct {
	OnGround bool
}

func (p *Player) Decode(r *Reader) (err error) {
	p.OnGround, err = r.ReadBool()
	return err
}

func (p *Player) Encode(w *Writer) error {
	w.WriteBool(p.OnGround)
	return nil
}

type PlayerPosition struct {
	X, FeetY, Z float64
	OnGround    bool
}

func (p *PlayerPosition) Decode(r *Reader) (err error) {
	if p.X, err = r.ReadFloat64(); err != nil {
		return err
	}
	if p.FeetY, err = r.ReadFloat64(); err != nil {
		return err
	}
	if p.Z, err = r.ReadFloat64(); err != nil {
		return err
	}
	p.OnGround, err = r.ReadBool()
	return err
}

func (p *PlayerPosition) Encode(w *Writer) error {
	w.WriteFloat64(p.X)
	w.WriteFloat64(p.FeetY)
	w.WriteFloat64(p.Z)
	w.WriteBool(p.OnGround)
	return nil
}

type PlayerPositionAndLook struct {
	X, FeetY, Z float64
	Yaw, Pitch  float32
	OnGround    bool
}

func (p *PlayerPositionAndLook) Decode(r *Reader) (err error) {
	if p.X, err = r.ReadFloat64(); err != nil {
		return err
	}
	if p.FeetY, err = r.ReadFloat64(); err != nil {
		return err
	}
	if p.Z, err = r.ReadFloat64(); err != nil {
		return err
	}
	if p.Yaw, err = r.ReadFloat32(); err != nil {
		return err
	}
	if p.Pitch, err = r.ReadFloat32(); err != nil {
		return err
	}
	p.OnGround, err = r.ReadBool()
	return err
}

func (p *PlayerPositionAndLook) Encode(w *Writer) error {
	w.WriteFloat64(p.X)
	w.WriteFloat64(p.FeetY)
	w.WriteFloat64(p.Z)
	w.WriteFloat32(p.Yaw)
	w.WriteFloat32(p.Pitch)
	w.WriteBool(p.OnGround)
	return nil
}

type PlayerLook struct {
	Yaw, Pitch float32
	OnGround   bool
}

func (p *PlayerLook) Decode(r *Reader) (err error) {
	if p.Yaw, err = r.ReadFloat32(); err != nil {
		return err
	}
	if p.Pitch, err = r.ReadFloat32(); err != nil {
		return err
	}
	p.OnGround, err = r.ReadBool()
	return err
}

func (p *PlayerLook) Encode(w *Writer) error {
	w.WriteFloat32(p.Yaw)
	w.WriteFloat32(p.Pitch)
	w.WriteBool(p.OnGround)
	return nil
}

type VehicleMove struct {
	X, Y, Z    float64
	Yaw, Pitch float32
}

func (p *VehicleMove) Decode(r *Reader) (err error) {
	if p.X, err = r.ReadFloat64(); err != nil {
		return err
	}
	if p.Y, err = r.ReadFloat64(); err != nil {
		return err
	}
	if p.Z, err = r.ReadFloat64(); err != nil {
		return err
	}
	if p.Yaw, err = r.ReadFloat32(); err != nil {
		return err
	}
	p.Pitch, err = r.ReadFloat32()
	return err
}

func (p *VehicleMove) Encode(w *Writer) error {
	w.WriteFloat64(p.X)
	w.WriteFloat64(p.Y)
	w.WriteFloat64(p.Z)
	w.WriteFloat32(p.Yaw)
	w.WriteFloat32(p.Pitch)
	return nil
}

type SteerBoat struct {
	LeftPaddleTurning  bool
	RightPaddleTurning bool
}

func (p *SteerBoat) Decode(r *Reader) (err error) {
	if p.LeftPaddleTurning, err = r.ReadBool(); err != nil {
		return err
	}
	p.RightPaddleTurning, err = r.ReadBool()
	return err
}

func (p *SteerBoat) Encode(w *Writer) error {
	w.WriteBool(p.LeftPaddleTurning)
	w.WriteBool(p.RightPaddleTurning)
	return nil
}

type CraftRecipeRequest struct {
	WindowID int8
	Recipe   int32
	MakeAll  bool
}

func (p *CraftRecipeRequest) Decode(r *Reader) (err error) {
	if p.WindowID, err = r.ReadInt8(); err != nil {
		return err
	}
	if p.Recipe, err = r.ReadVarInt(); err != nil {
		return err
	}
	p.MakeAll, err = r.ReadBool()
	return err
}

func (p *CraftRecipeRequest) Encode(w *Writer) error {
	w.WriteInt8(p.WindowID)
	w.WriteVarInt(p.Recipe)
	w.WriteBool(p.MakeAll)
	return nil
}

type PlayerAbilities struct {
	Flags        int8
	FlyingSpeed  float32
	WalkingSpeed float32
}

func (p *PlayerAbilities) Decode(r *Reader) (err error) {
	if p.Flags, err = r.ReadInt8(); err != nil {
		return err
	}
	if p.FlyingSpeed, err = r.ReadFloat32(); err != nil {
		return err
	}
	p.WalkingSpeed, err = r.ReadFloat32()
	return err
}

func (p *PlayerAbilities) Encode(w *Writer) error {
	w.WriteInt8(p.Flags)
	w.WriteFloat32(p.FlyingSpeed)
	w.WriteFloat32(p.WalkingSpeed)
	return nil
}

type PlayerDigging struct {
	Status   int32
	Location Position
	Face     int8
}

func (p *PlayerDigging) Decode(r *Reader) (err error) {
	if p.Status, err = r.ReadVarInt(); err != nil {
		return err
	}
	if p.Location, err = r.ReadPosition(); err != nil {
		return err
	}
	p.Face, err = r.ReadInt8()
	return err
}

func (p *PlayerDigging) Encode(w *Writer) error {
	w.WriteVarInt(p.Status)
	if err := w.WritePosition(p.Location); err != nil {
		return err
	}
	w.WriteInt8(p.Face)
	return nil
}

type EntityAction struct {
	EntityID  int32
	ActionID  int32
	JumpBoost int32
}

func (p *EntityAction) Decode(r *Reader) (err error) {
	if p.EntityID, err = r.ReadVarInt(); err != nil {
		return err
	}
	if p.ActionID, err = r.ReadVarInt(); err != nil {
		return err
	}
	p.JumpBoost, err = r.ReadVarInt()
	return err
}

func (p *EntityAction) Encode(w *Writer) error {
	w.WriteVarInt(p.EntityID)
	w.WriteVarInt(p.ActionID)
	w.WriteVarInt(p.JumpBoost)
	return nil
}

type SteerVehicle struct {
	Sideways float32
	Forward  float32
	Flags    uint8
}

func (p *SteerVehicle) Decode(r *Reader) (err error) {
	if p.Sideways, err = r.ReadFloat32(); err != nil {
		return err
	}
	if p.Forward, err = r.ReadFloat32(); err != nil {
		return err
	}
	p.Flags, err = r.ReadUint8()
	return err
}

func (p *SteerVehicle) Encode(w *Writer) error {
	w.WriteFloat32(p.Sideways)
	w.WriteFloat32(p.Forward)
	w.WriteUint8(p.Flags)
	return nil
}

// CraftingBookData.Type values.
const (
	CraftingBookDisplayedRecipe int32 = 0
	CraftingBookStatus          int32 = 1
)

// CraftingBookData reports either the recipe on display (DisplayedRecipe) or
// the book state (BookOpen, FilterActive), depending on Type.
type CraftingBookData struct {
	Type            int32
	DisplayedRecipe int32
	BookOpen        bool
	FilterActive    bool
}

func (p *CraftingBookData) Decode(r *Reader) (err error) {
	if p.Type, err = r.ReadVarInt(); err != nil {
		return err
	}
	switch p.Type {
	case CraftingBookDisplayedRecipe:
		p.DisplayedRecipe, err = r.ReadInt32()
		return err
	case CraftingBookStatus:
		if p.BookOpen, err = r.ReadBool(); err != nil {
			return err
		}
		p.FilterActive, err = r.ReadBool()
		return err
	default:
		return fmt.Errorf("crafting book data type %d: %w", p.Type, ErrInvalidEnum)
	}
}

func (p *CraftingBookData) Encode(w *Writer) error {
	switch p.Type {
	case CraftingBookDisplayedRecipe:
		if p.BookOpen || p.FilterActive {
			return fmt.Errorf("crafting book displayed recipe with book state: %w", ErrFieldNotSent)
		}
		w.WriteVarInt(p.Type)
		w.WriteInt32(p.DisplayedRecipe)
	case CraftingBookStatus:
		if p.DisplayedRecipe != 0 {
			return fmt.Errorf("crafting book status with a recipe: %w", ErrFieldNotSent)
		}
		w.WriteVarInt(p.Type)
		w.WriteBool(p.BookOpen)
		w.WriteBool(p.FilterActive)
	default:
		return fmt.Errorf("crafting book data type %d: %w", p.Type, ErrInvalidEnum)
	}
	return nil
}

type ResourcePackStatus struct {
	Result int32
}

func (p *ResourcePackStatus) Decode(r *Reader) (err error) {
	p.Result, err = r.ReadVarInt()
	return err
}

func (p *ResourcePackStatus) Encode(w *Writer) error {
	w.WriteVarInt(p.Result)
	return nil
}

// AdvancementTab.Action values.
const (
	AdvancementTabOpened int32 = 0
	AdvancementTabClosed int32 = 1
)

// AdvancementTab reports the advancement screen. TabID is only sent when
// the tab was opened.
type AdvancementTab struct {
	Action int32
	TabID  string
}

func (p *AdvancementTab) Decode(r *Reader) (err error) {
	if p.Action, err = r.ReadVarInt(); err != nil {
		return err
	}
	switch p.Action {
	case AdvancementTabOpened:
		p.TabID, err = r.ReadString(maxIdentifierLen)
		return err
	case AdvancementTabClosed:
		return nil
	default:
		return fmt.Errorf("advancement tab action %d: %w", p.Action, ErrInvalidEnum)
	}
}

func (p *AdvancementTab) Encode(w *Writer) error {
	switch p.Action {
	case AdvancementTabOpened:
		w.WriteVarInt(p.Action)
		return w.WriteString(p.TabID, maxIdentifierLen)
	case AdvancementTabClosed:
		if p.TabID != "" {
			return fmt.Errorf("closed advancement tab with a tab id: %w", ErrFieldNotSent)
		}
		w.WriteVarInt(p.Action)
		return nil
	default:
		return fmt.Errorf("advancement tab action %d: %w", p.Action, ErrInvalidEnum)
	}
}

type HeldItemChange struct {
	Slot int16
}

func (p *HeldItemChange) Decode(r *Reader) (err error) {
	p.Slot, err = r.ReadInt16()
	return err
}

func (p *HeldItemChange) Encode(w *Writer) error {
	w.WriteInt16(p.Slot)
	return nil
}

type CreativeInventoryAction struct {
	Slot        int16
	ClickedItem Slot
}

func (p *CreativeInventoryAction) Decode(r *Reader) (err error) {
	if p.Slot, err = r.ReadInt16(); err != nil {
		return err
	}
	p.ClickedItem, err = r.ReadSlot()
	return err
}

func (p *CreativeInventoryAction) Encode(w *Writer) error {
	w.WriteInt16(p.Slot)
	return w.WriteSlot(p.ClickedItem)
}

type UpdateSign struct {
	Location Position
	Lines    [4]string
}

func (p *UpdateSign) Decode(r *Reader) (err error) {
	if p.Location, err = r.ReadPosition(); err != nil {
		return err
	}
	for i := range p.Lines {
		if p.Lines[i], err = r.ReadString(maxSignLineLen); err != nil {
			return fmt.Errorf("line %d: %w", i+1, err)
		}
	}
	return nil
}

func (p *UpdateSign) Encode(w *Writer) error {
	if err := w.WritePosition(p.Location); err != nil {
		return err
	}
	for i, line := range p.Lines {
		if err := w.WriteString(line, maxSignLineLen); err != nil {
			return fmt.Errorf("line %d: %w", i+1, err)
		}
	}
	return nil
}

type Animation struct {
	Hand int32
}

func (p *Animation) Decode(r *Reader) (err error) {
	p.Hand, err = r.ReadVarInt()
	return err
}

func (p *Animation) Encode(w *Writer) error {
	w.WriteVarInt(p.Hand)
	return nil
}

type Spectate struct {
	TargetPlayer uuid.UUID
}

func (p *Spectate) Decode(r *Reader) (err error) {
	p.TargetPlayer, err = r.ReadUUID()
	return err
}

func (p *Spectate) Encode(w *Writer) error {
	w.WriteUUID(p.TargetPlayer)
	return nil
}

type PlayerBlockPlacement struct {
	Location                  Position
	Face                      int32
	Hand                      int32
	CursorX, CursorY, CursorZ float32
}

func (p *PlayerBlockPlacement) Decode(r *Reader) (err error) {
	if p.Location, err = r.ReadPosition(); err != nil {
		return err
	}
	if p.Face, err = r.ReadVarInt(); err != nil {
		return err
	}
	if p.Hand, err = r.ReadVarInt(); err != nil {
		return err
	}
	if p.CursorX, err = r.ReadFloat32(); err != nil {
		return err
	}
	if p.CursorY, err = r.ReadFloat32(); err != nil {
		return err
	}
	p.CursorZ, err = r.ReadFloat32()
	return err
}

func (p *PlayerBlockPlacement) Encode(w *Writer) error {
	if err := w.WritePosition(p.Location); err != nil {
		return err
	}
	w.WriteVarInt(p.Face)
	w.WriteVarInt(p.Hand)
	w.WriteFloat32(p.CursorX)
	w.WriteFloat32(p.CursorY)
	w.WriteFloat32(p.CursorZ)
	return nil
}

type UseItem struct {
	Hand int32
}

func (p *UseItem) Decode(r *Reader) (err error) {
	p.Hand, err = r.ReadVarInt()
	return err
}

func (p *UseItem) Encode(w *Writer) error {
	w.WriteVarInt(p.Hand)
	return nil
}
