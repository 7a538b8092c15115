package device

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"runtime/debug"
	"strconv"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/oledock/oledock/apimodel"
	"github.com/oledock/oledock/internal/srv/config"
	"github.com/oledock/oledock/internal/srv/event"
)

type Api struct {
	eventChannel chan event.ApiEvent

	router    *mux.Router
	apiRouter *mux.Router
	server    *http.Server

	config   *config.ServerConfig
	statusFn func() apimodel.Status
}

func NewApi(config *config.ServerConfig, statusFn func() apimodel.Status) *Api {
	api := Api{
		config:       config,
		statusFn:     statusFn,
		eventChannel: make(chan event.ApiEvent),
	}

	api.router = mux.NewRouter().StrictSlash(false)

	// API Routes
	api.apiRouter = api.router.PathPrefix("/api").Subrouter()
	api.apiRouter.NotFoundHandler = http.HandlerFunc(ErrorNotFoundAction)
	api.apiRouter.MethodNotAllowedHandler = http.HandlerFunc(ErrorMethodNotAllowedAction)

	// Auth middleware
	api.apiRouter.Use(
		func(handler http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				defer func() {
					if rec := recover(); rec != nil {
						logrus.Warningf("recovered from panic : [%v] - stack trace : \n [%s]", rec, debug.Stack())
						strMessage := fmt.Sprintf("%v", rec)
						GlobalErrorAction(w, strMessage, http.StatusInternalServerError)
					}
				}()

				// Check API Key
				apiKey := r.Header.Get("x-api-key")
				if apiKey != config.ServerParam.ApiParam.ApiKey {
					ErrorStatusAction(w, r, http.StatusForbidden)
					return
				}

				logrus.Debugf("PATH: %s %s", r.Host, r.URL.Path)

				handler.ServeHTTP(w, r)
			})
		})

	// Create server check endpoint
	api.apiRouter.HandleFunc("/is_alive",
		func(w http.ResponseWriter, r *http.Request) {
			ErrorStatusAction(w, r, http.StatusOK)
		}).Methods("GET")
	api.apiRouter.HandleFunc("/status",
		func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(api.statusFn())
		}).Methods("GET")
	api.apiRouter.HandleFunc("/text",
		func(w http.ResponseWriter, r *http.Request) {
			var textRequest apimodel.TextRequest
			err := json.NewDecoder(r.Body).Decode(&textRequest)
			if err != nil {
				apimodel.WrongParametersErrorMessage.SendError(w)
				return
			}
			api.forward(w, r, event.ApiEventShowTextData{Text: textRequest.Text})
		}).Methods("POST")
	api.apiRouter.HandleFunc("/text",
		func(w http.ResponseWriter, r *http.Request) {
			api.forward(w, r, event.ApiEventClearTextData{})
		}).Methods("DELETE")
	api.apiRouter.HandleFunc("/brightness/{value}",
		func(w http.ResponseWriter, r *http.Request) {
			vars := mux.Vars(r)
			valueStr, ok := vars["value"]
			if !ok {
				ErrorStatusAction(w, r, http.StatusBadRequest)
				return
			}
			value, err := strconv.Atoi(valueStr)
			if err != nil {
				ErrorStatusAction(w, r, http.StatusBadRequest)
				return
			}
			api.forward(w, r, event.ApiEventBrightnessData{Brightness: value})
		}).Methods("POST")
	api.apiRouter.HandleFunc("/play",
		func(w http.ResponseWriter, r *http.Request) {
			api.forward(w, r, event.ApiEventPlayData{})
		}).Methods("POST")
	api.apiRouter.HandleFunc("/pause",
		func(w http.ResponseWriter, r *http.Request) {
			api.forward(w, r, event.ApiEventPauseData{})
		}).Methods("POST")
	api.apiRouter.HandleFunc("/shift/{mode}",
		func(w http.ResponseWriter, r *http.Request) {
			vars := mux.Vars(r)
			mode, ok := vars["mode"]
			if !ok {
				ErrorStatusAction(w, r, http.StatusBadRequest)
				return
			}
			api.forward(w, r, event.ApiEventShiftModeData{Mode: mode})
		}).Methods("POST")

	// Tell the browser that it's OK for JS to communicate with the server
	headersOk := handlers.AllowedHeaders([]string{"Authorization"})
	originsOk := handlers.AllowedOrigins([]string{"*"})
	methodsOk := handlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"})

	api.server = &http.Server{
		Addr:         ":" + strconv.FormatInt(config.ServerParam.ApiParam.Port, 10),
		Handler:      handlers.CompressHandler(handlers.CORS(originsOk, headersOk, methodsOk)(api.router)),
		ReadTimeout:  time.Second * 240,
		WriteTimeout: time.Second * 240,
		IdleTimeout:  time.Second * 240,
	}

	return &api
}

// forward hands the request to the event loop and waits for its verdict.
func (d *Api) forward(w http.ResponseWriter, r *http.Request, data interface{}) {
	result := make(chan error)
	d.eventChannel <- event.ApiEvent{Result: result, Data: data}
	err := <-result
	if err == nil {
		ErrorStatusAction(w, r, http.StatusOK)
	} else {
		GlobalErrorAction(w, err.Error(), http.StatusForbidden)
	}
}

func (d *Api) Start() {
	logrus.Infof("Start api device")

	go func() {
		err := d.server.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			logrus.Error(err)
		}
	}()
}

func (d *Api) StopSendingEvent() {
	logrus.Infof("Stop api device")
	d.server.Shutdown(context.Background())
}

func (d *Api) EventChannel() chan event.ApiEvent {
	return d.eventChannel
}

func ErrorNotFoundAction(w http.ResponseWriter, r *http.Request) {
	ErrorStatusAction(w, r, http.StatusNotFound)
}

func ErrorMethodNotAllowedAction(w http.ResponseWriter, r *http.Request) {
	ErrorStatusAction(w, r, http.StatusMethodNotAllowed)
}

func ErrorStatusAction(w http.ResponseWriter, r *http.Request, status int) {
	ErrorMessageAction(w, "", status)
}

func GlobalErrorAction(w http.ResponseWriter, message string, status int) {
	ErrorMessageAction(w, message, status)
}

func ErrorMessageAction(w http.ResponseWriter, title string, status int) {
	errorMessage := &apimodel.ErrorMessage{
		ErrStatusCode: status,
		ErrMessage:    title,
	}

	if title == "" {
		switch status {
		case http.StatusOK:
			errorMessage.ErrMessage = "Ok"
		case http.StatusNotFound:
			errorMessage.ErrMessage = "Page not found"
		case http.StatusMethodNotAllowed:
			errorMessage.ErrMessage = "Method not allowed"
		case http.StatusForbidden:
			errorMessage.ErrMessage = "Forbidden"
		case http.StatusServiceUnavailable:
			errorMessage.ErrMessage = "Service unavailable"
		case http.StatusBadRequest:
			errorMessage.ErrMessage = "Bad request"
		default:
			errorMessage.ErrMessage = "Internal error"
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(errorMessage)
}
