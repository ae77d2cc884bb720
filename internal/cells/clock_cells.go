package cells

// Clock-side primitive templates in canonical emission order. The glitch-free
// mux and the divider are the structurally interesting ones; everything else
// is a thin wrapper kept so the generated netlist never instantiates a raw
// gate directly.
var clockCells = []Cell{
	{Name: "CLK_BUF", Body: `// Clock buffer. Template cell - replace with foundry IP.
module CLK_BUF (
    input  wire clk_in,
    output wire clk_out
);
    assign clk_out = clk_in;
endmodule
`},
	{Name: "CLK_ICG_POS", Body: `// Latch-AND clock gate, enable active high. Template cell - replace with foundry IP.
module CLK_ICG_POS (
    input  wire clk_in,
    input  wire en,
    input  wire test_en,
    output wire clk_out
);
    reg en_lat;
    always @(clk_in or en or test_en) begin
        if (!clk_in)
            en_lat <= en | test_en;
    end
    assign clk_out = clk_in & en_lat;
endmodule
`},
	{Name: "CLK_ICG_NEG", Body: `// Latch-OR clock gate, enable active high, gates the low phase. Template cell - replace with foundry IP.
module CLK_ICG_NEG (
    input  wire clk_in,
    input  wire en,
    input  wire test_en,
    output wire clk_out
);
    reg en_lat;
    always @(clk_in or en or test_en) begin
        if (clk_in)
            en_lat <= en | test_en;
    end
    assign clk_out = clk_in | ~en_lat;
endmodule
`},
	{Name: "CLK_ICG", Body: `// Polarity-parameterised integrated clock gate wrapper.
// POLARITY 1: enable active high (positive latch-AND path)
// POLARITY 0: enable active low  (negative latch-OR path)
// CLOCK_DURING_RESET 1 keeps the clock running while rst_n is asserted.
module CLK_ICG #(
    parameter CLOCK_DURING_RESET = 0,
    parameter POLARITY           = 1
) (
    input  wire clk_in,
    input  wire en,
    input  wire test_en,
    input  wire rst_n,
    output wire clk_out
);
    wire en_pol = (POLARITY != 0) ? en : ~en;
    wire en_rst = (CLOCK_DURING_RESET != 0) ? (en_pol | ~rst_n)
                                            : (en_pol & rst_n);
    generate
        if (POLARITY != 0) begin : g_pos
            CLK_ICG_POS u_icg (
                .clk_in  (clk_in),
                .en      (en_rst),
                .test_en (test_en),
                .clk_out (clk_out)
            );
        end else begin : g_neg
            CLK_ICG_NEG u_icg (
                .clk_in  (clk_in),
                .en      (en_rst),
                .test_en (test_en),
                .clk_out (clk_out)
            );
        end
    endgenerate
endmodule
`},
	{Name: "CLK_INV", Body: `// Clock inverter. Template cell - replace with foundry IP.
module CLK_INV (
    input  wire clk_in,
    output wire clk_out
);
    assign clk_out = ~clk_in;
endmodule
`},
	{Name: "CLK_OR2", Body: `// 2-input clock OR. Template cell - replace with foundry IP.
module CLK_OR2 (
    input  wire clk_in0,
    input  wire clk_in1,
    output wire clk_out
);
    assign clk_out = clk_in0 | clk_in1;
endmodule
`},
	{Name: "CLK_MUX2", Body: `// 2-input clock mux. Template cell - replace with foundry IP.
module CLK_MUX2 (
    input  wire clk_in0,
    input  wire clk_in1,
    input  wire sel,
    output wire clk_out
);
    assign clk_out = sel ? clk_in1 : clk_in0;
endmodule
`},
	{Name: "CLK_XOR", Body: `// 2-input clock XOR. Template cell - replace with foundry IP.
module CLK_XOR (
    input  wire clk_in0,
    input  wire clk_in1,
    output wire clk_out
);
    assign clk_out = clk_in0 ^ clk_in1;
endmodule
`},
	{Name: "CLK_OR_TREE", Body: `// N-input OR tree used to merge the gated legs of a clock mux.
module CLK_OR_TREE #(
    parameter NUM = 2
) (
    input  wire [NUM-1:0] clk_in,
    output wire           clk_out
);
    assign clk_out = |clk_in;
endmodule
`},
	{Name: "CLK_STD_MUX", Body: `// Raw combinational multi-input clock mux. The output may glitch while
// sel changes; use CLK_GF_MUX when the sources are live.
module CLK_STD_MUX #(
    parameter NUM   = 2,
    parameter SEL_W = (NUM <= 2) ? 1 : $clog2(NUM)
) (
    input  wire [NUM-1:0]   clk_in,
    input  wire [SEL_W-1:0] sel,
    output wire             clk_out
);
    assign clk_out = clk_in[sel];
endmodule
`},
	{Name: "CLK_GF_MUX", Body: `// Glitch-free multi-input clock mux. Per input: onehot decode, mutual
// exclusion against every other path, a two-stage glitch filter, an
// N-stage synchronizer on the path's own clock, a clock gate, then an OR
// tree and a DFT bypass mux.
module CLK_GF_MUX #(
    parameter NUM   = 2,
    parameter STAGE = 2,
    parameter SEL_W = (NUM <= 2) ? 1 : $clog2(NUM)
) (
    input  wire [NUM-1:0]   clk_in,
    input  wire [SEL_W-1:0] sel,
    input  wire             rst_n,
    input  wire             test_clk,
    input  wire             test_en,
    output wire             clk_out
);
    wire [NUM-1:0] active;
    wire [NUM-1:0] gated;

    genvar gi;
    generate
        for (gi = 0; gi < NUM; gi = gi + 1) begin : g_path
            wire dec         = (sel == gi[SEL_W-1:0]);
            wire others_idle = ~|(active & ~({{NUM-1{1'b0}}, 1'b1} << gi));
            wire req         = dec & others_idle;

            reg [1:0] filt;
            always @(posedge clk_in[gi] or negedge rst_n) begin
                if (!rst_n)
                    filt <= 2'b00;
                else
                    filt <= {filt[0], req};
            end

            reg [STAGE-1:0] sync;
            always @(posedge clk_in[gi] or negedge rst_n) begin
                if (!rst_n)
                    sync <= {STAGE{1'b0}};
                else
                    sync <= {sync[STAGE-2:0], &filt};
            end
            assign active[gi] = sync[STAGE-1];

            CLK_ICG_POS u_gate (
                .clk_in  (clk_in[gi]),
                .en      (active[gi]),
                .test_en (1'b0),
                .clk_out (gated[gi])
            );
        end
    endgenerate

    wire mux_clk;
    CLK_OR_TREE #(
        .NUM (NUM)
    ) u_or (
        .clk_in  (gated),
        .clk_out (mux_clk)
    );

    CLK_MUX2 u_dft (
        .clk_in0 (mux_clk),
        .clk_in1 (test_clk),
        .sel     (test_en),
        .clk_out (clk_out)
    );
endmodule
`},
	{Name: "CLK_DIV", Body: `// Configurable static/dynamic clock divider. The handshake FSM walks
// load/wait/idle; the counter drives separate odd/even phase paths and the
// output is final-gated so enable changes never truncate a pulse.
module CLK_DIV #(
    parameter WIDTH              = 4,
    parameter DEFAULT_VAL        = 2,
    parameter CLOCK_DURING_RESET = 0
) (
    input  wire             clk_in,
    input  wire             rst_n,
    input  wire             en,
    input  wire             test_en,
    input  wire [WIDTH-1:0] div,
    input  wire             div_valid,
    output reg              div_ready,
    output reg  [WIDTH-1:0] count,
    output wire             clk_out
);
    localparam ST_IDLE = 2'd0;
    localparam ST_LOAD = 2'd1;
    localparam ST_WAIT = 2'd2;

    reg [1:0]       state;
    reg [WIDTH-1:0] div_q;

    always @(posedge clk_in or negedge rst_n) begin
        if (!rst_n) begin
            state     <= ST_IDLE;
            div_q     <= DEFAULT_VAL[WIDTH-1:0];
            div_ready <= 1'b0;
        end else begin
            case (state)
                ST_IDLE: begin
                    div_ready <= 1'b0;
                    if (div_valid)
                        state <= ST_LOAD;
                end
                ST_LOAD: begin
                    div_q     <= div;
                    div_ready <= 1'b1;
                    state     <= ST_WAIT;
                end
                ST_WAIT: begin
                    div_ready <= 1'b0;
                    state     <= ST_IDLE;
                end
                default: state <= ST_IDLE;
            endcase
        end
    end

    wire odd    = div_q[0];
    wire bypass = (div_q <= {{WIDTH-1{1'b0}}, 1'b1});
    wire [WIDTH-1:0] half = div_q >> 1;

    reg [WIDTH-1:0] cnt;
    reg             phase;
    reg             div_clk;

    always @(posedge clk_in or negedge rst_n) begin
        if (!rst_n) begin
            cnt     <= {WIDTH{1'b0}};
            phase   <= 1'b0;
            div_clk <= 1'b0;
            count   <= {WIDTH{1'b0}};
        end else begin
            count <= cnt;
            if (cnt >= div_q - 1'b1) begin
                cnt   <= {WIDTH{1'b0}};
                phase <= ~phase;
            end else begin
                cnt <= cnt + 1'b1;
            end
            if (odd)
                div_clk <= (cnt < half) ^ phase;
            else
                div_clk <= (cnt < half);
        end
    end

    reg clk_en;
    always @(posedge clk_in or negedge rst_n) begin
        if (!rst_n)
            clk_en <= (CLOCK_DURING_RESET != 0);
        else
            clk_en <= en;
    end

    wire core_clk = bypass ? clk_in : div_clk;

    CLK_ICG_POS u_gate (
        .clk_in  (core_clk),
        .en      (clk_en),
        .test_en (test_en),
        .clk_out (clk_out)
    );
endmodule
`},
	{Name: "CLK_DIV_AUTO", Body: `// Auto-handshake divider wrapper: two-flop CDC on the divide value and a
// self-generated strobe, for dividers whose value pin has no valid signal.
module CLK_DIV_AUTO #(
    parameter WIDTH              = 4,
    parameter DEFAULT_VAL        = 2,
    parameter CLOCK_DURING_RESET = 0
) (
    input  wire             clk_in,
    input  wire             rst_n,
    input  wire             en,
    input  wire             test_en,
    input  wire [WIDTH-1:0] div,
    output wire [WIDTH-1:0] count,
    output wire             clk_out
);
    reg [WIDTH-1:0] div_s1;
    reg [WIDTH-1:0] div_s2;
    reg [WIDTH-1:0] div_s3;

    always @(posedge clk_in or negedge rst_n) begin
        if (!rst_n) begin
            div_s1 <= DEFAULT_VAL[WIDTH-1:0];
            div_s2 <= DEFAULT_VAL[WIDTH-1:0];
            div_s3 <= DEFAULT_VAL[WIDTH-1:0];
        end else begin
            div_s1 <= div;
            div_s2 <= div_s1;
            div_s3 <= div_s2;
        end
    end

    wire auto_valid = (div_s2 != div_s3);

    CLK_DIV #(
        .WIDTH              (WIDTH),
        .DEFAULT_VAL        (DEFAULT_VAL),
        .CLOCK_DURING_RESET (CLOCK_DURING_RESET)
    ) u_div (
        .clk_in    (clk_in),
        .rst_n     (rst_n),
        .en        (en),
        .test_en   (test_en),
        .div       (div_s2),
        .div_valid (auto_valid),
        .div_ready (),
        .count     (count),
        .clk_out   (clk_out)
    );
endmodule
`},
}
