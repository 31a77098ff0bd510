package server

import (
	"errors"
	"math/rand"
	"net/http"
	"net/rpc"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/wfunc/cardserver/broadcast"
	"github.com/wfunc/cardserver/config"
	"github.com/wfunc/cardserver/game"
	"github.com/wfunc/cardserver/logger"
	"github.com/wfunc/cardserver/monitor"
	"github.com/wfunc/cardserver/network"
	"github.com/wfunc/cardserver/persistence"
	"github.com/wfunc/cardserver/room"
	cardserver_rpc "github.com/wfunc/cardserver/rpc"
	"github.com/wfunc/cardserver/services"
	"github.com/wfunc/cardserver/session"
	"github.com/wfunc/cardserver/state"
	"github.com/wfunc/cardserver/timer"
)

type GameServer struct {
	addr          string
	publicURL     string
	upgrader      websocket.Upgrader
	registry      *session.Registry
	roomManager   *room.Manager
	broadcaster   *broadcast.RoomBroadcaster
	recordService *services.RecordService
	monitor       *monitor.Monitor
	timers        *timer.Manager
	rpcServer     *cardserver_rpc.Server
	shutdownChan  chan struct{}
}

// NewGameServer wires the registry, room manager, broadcaster, metrics
// and admin RPC together. store may be nil to run without persistence.
func NewGameServer(cfg *config.Config, store persistence.Store) *GameServer {
	s := &GameServer{
		addr:         cfg.Server.HTTPAddress,
		publicURL:    cfg.Server.PublicURL,
		registry:     session.NewRegistry(),
		monitor:      monitor.NewMonitor("cardserver"),
		timers:       timer.NewManager(),
		shutdownChan: make(chan struct{}),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // 允许所有跨域请求
			},
		},
	}
	if s.publicURL == "" {
		s.publicURL = "http://localhost" + s.addr
	}

	// 初始化广播器和房间管理器
	s.broadcaster = broadcast.NewRoomBroadcaster(s.registry)

	var roomStore room.RoomStore
	if store != nil {
		roomStore = store
		s.recordService = services.NewRecordService(store)
	}

	s.roomManager = room.NewManager(room.Options{
		Rules: game.Rules{
			HandSize:        cfg.Game.HandSize,
			AllowSoloFinish: cfg.Game.AllowSoloFinish,
		},
		MinPlayers:   cfg.Game.MinPlayers,
		TurnTimeout:  time.Duration(cfg.Game.TurnTimeoutSeconds) * time.Second,
		CodeAttempts: cfg.Game.CodeAttempts,
	}, s.broadcaster, roomStore, s.timers, rand.New(rand.NewSource(time.Now().UnixNano())))

	s.roomManager.SetGameOverHook(func(r *room.Room, sess *game.Session) {
		s.monitor.IncGamesCompleted()
		if s.recordService != nil {
			if err := s.recordService.SaveFinishedGame(r.Code, r.GameKind, sess); err != nil {
				logger.Log.Errorf("saving game record for room %s: %v", r.Code, err)
			}
		}
	})

	// 初始化RPC服务器
	rpcServer, err := cardserver_rpc.NewServer(cfg.Server.RPCAddress)
	if err != nil {
		logger.Log.Fatalf("Failed to create RPC server: %v", err)
	}
	s.rpcServer = rpcServer
	rpc.Register(cardserver_rpc.NewAdminService(s.roomManager, s.recordService))

	// 房间数指标定期刷新
	s.timers.Schedule(5*time.Second, 5*time.Second, func() {
		s.monitor.SetActiveRooms(s.roomManager.ActiveCount())
	})

	s.monitor.StartServer(cfg.Server.MetricsAddress)

	return s
}

func (s *GameServer) Start() error {
	go s.rpcServer.Start()

	mux := httprouter.New()
	mux.GET("/ws", s.handleWebSocket)
	mux.GET("/healthz", s.handleHealth)
	mux.GET("/rooms/:code/qr", s.handleRoomQR)

	logger.Log.Infof("Game server listening on %s", s.addr)
	return http.ListenAndServe(s.addr, mux)
}

func (s *GameServer) Shutdown() {
	close(s.shutdownChan)
	s.timers.Stop()
	s.rpcServer.Stop()
}

func (s *GameServer) handleHealth(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok\n"))
}

// handleRoomQR serves a PNG QR code of the join URL for an active room.
func (s *GameServer) handleRoomQR(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	code := room.NormalizeCode(p.ByName("code"))
	if _, exists := s.roomManager.Get(code); !exists {
		http.Error(w, "room not found", http.StatusNotFound)
		return
	}

	png, err := qrcode.Encode(s.publicURL+"/join/"+code, qrcode.Medium, 256)
	if err != nil {
		http.Error(w, "qr generation failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Write(png)
}

func (s *GameServer) handleWebSocket(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Log.Infof("Failed to upgrade connection: %v", err)
		return
	}

	// Identity comes from the authentication collaborator in front of us;
	// a missing identity gets an anonymous one.
	identity := r.URL.Query().Get("identity")
	if identity == "" {
		identity = "anon-" + uuid.New().String()
	}

	s.handleConnection(identity, conn)
}

func (s *GameServer) handleConnection(identity string, conn *websocket.Conn) {
	wsConn := network.NewWSConnection(conn)
	sess := session.NewSession(identity, wsConn)
	s.registry.Register(sess)
	s.monitor.IncOnlinePlayers()

	logger.Log.Infof("New connection from %s, identity: %s", wsConn.RemoteAddr(), identity)

	defer func() {
		logger.Log.Infof("Connection closed from %s, identity: %s", wsConn.RemoteAddr(), identity)
		// Room membership survives the connection: the identity may
		// reconnect and resume.
		s.registry.Unregister(sess)
		s.monitor.DecOnlinePlayers()
		wsConn.Close()
	}()

	for {
		select {
		case <-s.shutdownChan:
			return
		default:
			env, err := wsConn.ReadEnvelope()
			if err != nil {
				var verr *network.ValidationError
				if errors.As(err, &verr) {
					s.monitor.IncRejectedActions()
					sess.Send(network.NewError(verr.Error()))
					continue
				}
				return
			}
			s.handleEnvelope(sess, env)
		}
	}
}

func (s *GameServer) handleEnvelope(sess *session.Session, env *network.Envelope) {
	started := time.Now()
	s.monitor.IncMessagesReceived()

	err := s.dispatchEnvelope(sess, env)
	s.monitor.ObserveActionLatency(time.Since(started))

	if err != nil {
		// Rule, lifecycle and validation errors go back to the acting
		// sender only; other members see nothing for a rejected action.
		s.monitor.IncRejectedActions()
		sess.Send(network.NewError(err.Error()))
	}
}

func (s *GameServer) dispatchEnvelope(sess *session.Session, env *network.Envelope) error {
	switch env.Type {
	case network.MsgCreateRoom:
		var p network.CreateRoomPayload
		if err := network.DecodePayload(env, &p); err != nil {
			return err
		}
		if err := s.checkIdentity(sess, p.Identity); err != nil {
			return err
		}
		gameKind := p.GameKind
		if gameKind == "" {
			gameKind = "matching"
		}
		r, err := s.roomManager.Create(p.Identity, gameKind)
		if err != nil {
			return err
		}
		sess.RoomCode = r.Code
		return nil

	case network.MsgJoinRoom:
		var p network.JoinRoomPayload
		if err := network.DecodePayload(env, &p); err != nil {
			return err
		}
		if err := s.checkIdentity(sess, p.Identity); err != nil {
			return err
		}
		r, err := s.roomManager.Join(p.RoomCode, p.Identity)
		if err != nil {
			return err
		}
		sess.RoomCode = r.Code
		return nil

	case network.MsgLeaveRoom:
		var p network.LeaveRoomPayload
		if err := network.DecodePayload(env, &p); err != nil {
			return err
		}
		if err := s.checkIdentity(sess, p.Identity); err != nil {
			return err
		}
		if err := s.roomManager.Leave(p.RoomCode, p.Identity); err != nil {
			return err
		}
		sess.RoomCode = ""
		return nil

	case network.MsgStartGame:
		var p network.StartGamePayload
		if err := network.DecodePayload(env, &p); err != nil {
			return err
		}
		if err := s.checkIdentity(sess, p.Identity); err != nil {
			return err
		}
		r, exists := s.roomManager.Get(p.RoomCode)
		if !exists {
			return room.ErrRoomNotFound
		}
		return r.Dispatch(p.Identity, &state.Action{Kind: state.ActionStart})

	case network.MsgPlayCard:
		var p network.PlayCardPayload
		if err := network.DecodePayload(env, &p); err != nil {
			return err
		}
		if err := s.checkIdentity(sess, p.Identity); err != nil {
			return err
		}
		r, exists := s.roomManager.Get(p.RoomCode)
		if !exists {
			return room.ErrRoomNotFound
		}
		return r.Dispatch(p.Identity, &state.Action{
			Kind:        state.ActionPlay,
			CardID:      *p.CardID,
			ChosenColor: p.ChosenColor,
		})

	case network.MsgDrawCard:
		var p network.DrawCardPayload
		if err := network.DecodePayload(env, &p); err != nil {
			return err
		}
		if err := s.checkIdentity(sess, p.Identity); err != nil {
			return err
		}
		r, exists := s.roomManager.Get(p.RoomCode)
		if !exists {
			return room.ErrRoomNotFound
		}
		return r.Dispatch(p.Identity, &state.Action{Kind: state.ActionDraw})

	case network.MsgRequestHand:
		var p network.RequestHandPayload
		if err := network.DecodePayload(env, &p); err != nil {
			return err
		}
		if err := s.checkIdentity(sess, p.Identity); err != nil {
			return err
		}
		r, exists := s.roomManager.Get(p.RoomCode)
		if !exists {
			return room.ErrRoomNotFound
		}
		return r.SendHand(p.Identity)

	case network.MsgSendMessage:
		var p network.SendMessagePayload
		if err := network.DecodePayload(env, &p); err != nil {
			return err
		}
		if err := s.checkIdentity(sess, p.Identity); err != nil {
			return err
		}
		r, exists := s.roomManager.Get(p.RoomCode)
		if !exists {
			return room.ErrRoomNotFound
		}
		return r.Chat(p.Identity, p.Text)

	default:
		return &network.ValidationError{Reason: "unknown message type " + env.Type}
	}
}

// checkIdentity rejects payloads claiming a different identity than the
// connection was registered with.
func (s *GameServer) checkIdentity(sess *session.Session, claimed string) error {
	if claimed != sess.Identity {
		return &network.ValidationError{Reason: "identity does not match connection"}
	}
	return nil
}
