/*
Client-server layout adapted from Mat Ryer's Go Blueprints examples
(https://github.com/matryer/goblueprints).
*/

package main

import (
	"encoding/json"
	"flag"
	"html/template"
	"log"
	"net/http"
	"path/filepath"
	"sync"

	"github.com/flyingkit/imuekf/ahrs"
	"github.com/flyingkit/imuekf/sensors"
	"github.com/flyingkit/imuekf/sensors/sim"
)

type templateHandler struct {
	once     sync.Once
	filename string
	templ    *template.Template
}

func (t *templateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	t.once.Do(func() {
		t.templ = template.Must(template.ParseFiles(filepath.Join("templates", t.filename)))
	})
	t.templ.Execute(w, r)
}

func openProviders(hardware bool, i2cBus byte, rate float64) (gyro, accel sensors.Provider, err error) {
	if !hardware {
		sc := sim.PureYaw()
		return sim.NewGenerator("gyro0", sc, 1), sim.NewGenerator("accel0", sc, 2), nil
	}
	return newHardwareProviders(i2cBus, rate)
}

func main() {
	var (
		addr     = flag.String("addr", ":8080", "address to serve the dashboard on")
		hardware = flag.Bool("hardware", false, "read from real MPU-9250 hardware instead of the simulator")
		i2cBus   = flag.Int("i2c-bus", 1, "I2C bus number, when -hardware is set")
		rate     = flag.Float64("rate", 100, "sample rate in Hz, when -hardware is set")
	)
	flag.Parse()

	r := newRoom()
	http.Handle("/", &templateHandler{filename: "messages.html"})
	http.Handle("/room", r)
	go r.run()

	gyro, accel, err := openProviders(*hardware, byte(*i2cBus), *rate)
	if err != nil {
		log.Fatalln("imuekfweb:", err)
	}

	e := ahrs.New(ahrs.DefaultConfig())
	e.SetGyroID(gyro.ID())
	e.SetAccelID(accel.ID())

	events := make(chan ahrs.RotationEvent, 16)
	e.Subscribe(events)
	go func() {
		for ev := range events {
			msg, err := json.Marshal(ev)
			if err != nil {
				log.Println("imuekfweb: marshal:", err)
				continue
			}
			r.forward <- msg
		}
	}()

	go func() {
		gyroCh, accelCh := gyro.Samples(), accel.Samples()
		for gyroCh != nil || accelCh != nil {
			select {
			case s, ok := <-gyroCh:
				if !ok {
					gyroCh = nil
					continue
				}
				e.OnGyro(s.T.UnixNano(), s.GX, s.GY, s.GZ)
				if s.MagValid {
					e.SetMagID("mag0")
					e.OnMag(s.T.UnixNano(), s.MX, s.MY, s.MZ)
				}
			case s, ok := <-accelCh:
				if !ok {
					accelCh = nil
					continue
				}
				e.OnAccel(s.T.UnixNano(), s.AX, s.AY, s.AZ)
			}
		}
	}()

	log.Println("imuekfweb: serving on", *addr)
	if err := http.ListenAndServe(*addr, nil); err != nil {
		log.Fatal("imuekfweb: ListenAndServe:", err)
	}
}
